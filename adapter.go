package mediadrive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultUploadTimeout is the time budget of a single upload.
const DefaultUploadTimeout = time.Hour

var (
	// ErrNilFile is returned by Upload when no file is given.
	ErrNilFile = errors.New("nil file")
	// ErrMissingHash is returned by Upload for files without a hash.
	ErrMissingHash = errors.New("file has no hash")
)

// Provider is the contract between the host media library and a storage provider.
type Provider interface {
	// Upload stores the file and sets its URL.
	Upload(ctx context.Context, f *File) error
	// Delete removes the file previously stored by Upload.
	Delete(ctx context.Context, f File) error
}

// Adapter implements Provider on top of a Disk.
// An Adapter holds no mutable state and can be used concurrently.
type Adapter struct {
	Disk   Disk
	Config Config
}

// Config is the adapter configuration.
type Config struct {
	DefaultPath     string
	CDNBaseURL      string
	ImageExtensions []string
	MaxConcurrency  int
	BlockSize       int64
	UploadTimeout   time.Duration
	Logger          *log.Logger
}

// Option is an adapter configuration option.
type Option func(*Config)

// DefaultPath sets the directory for files without a path.
func DefaultPath(path string) Option {
	return func(cfg *Config) {
		cfg.DefaultPath = path
	}
}

// CDN serves image files from the CDN at baseURL instead of the storage.
func CDN(baseURL string) Option {
	return func(cfg *Config) {
		cfg.CDNBaseURL = baseURL
	}
}

// ImageExtensions replaces the extensions that are served through the CDN.
func ImageExtensions(exts ...string) Option {
	return func(cfg *Config) {
		cfg.ImageExtensions = exts
	}
}

// MaxConcurrency sets the ceiling for parallel block uploads.
// Values below 1 fall back to DefaultConcurrency.
func MaxConcurrency(n int) Option {
	return func(cfg *Config) {
		cfg.MaxConcurrency = n
	}
}

// BlockSize sets the chunk size of block uploads.
func BlockSize(size int64) Option {
	return func(cfg *Config) {
		cfg.BlockSize = size
	}
}

// UploadTimeout sets the time budget of a single upload.
func UploadTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.UploadTimeout = d
	}
}

// WithLogger logs every upload and delete to l.
func WithLogger(l *log.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// NewAdapter returns an Adapter that stores files on disk.
func NewAdapter(disk Disk, options ...Option) *Adapter {
	if disk == nil {
		panic("invalid disk")
	}

	cfg := Config{
		MaxConcurrency: DefaultConcurrency,
		BlockSize:      DefaultBlockSize,
		UploadTimeout:  DefaultUploadTimeout,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = DefaultConcurrency
	}
	if cfg.BlockSize < 1 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}

	return &Adapter{
		Disk:   disk,
		Config: cfg,
	}
}

// Mapper returns the key and URL rules of the adapter.
func (a *Adapter) Mapper() Mapper {
	return Mapper{
		DefaultPath:     a.Config.DefaultPath,
		StorageBaseURL:  a.Disk.BaseURL(),
		CDNBaseURL:      a.Config.CDNBaseURL,
		ImageExtensions: a.Config.ImageExtensions,
	}
}

// Upload writes the file buffer to the disk and sets f.URL on success.
// Empty buffers are stored as empty objects.
func (a *Adapter) Upload(ctx context.Context, f *File) error {
	if f == nil {
		return ErrNilFile
	}
	if f.Hash == "" {
		return ErrMissingHash
	}

	m := a.Mapper()
	key := m.Key(*f)
	u := m.PublicURL(key, f.Ext)

	ctx, cancel := context.WithTimeout(ctx, a.Config.UploadTimeout)
	defer cancel()

	a.logf("uploading %s (%d bytes, %s)", key, len(f.Buffer), f.Mime)

	if err := a.Disk.Put(ctx, key, f.Buffer, PutOptions{
		ContentType: f.Mime,
		BlockSize:   a.Config.BlockSize,
		Concurrency: a.Config.MaxConcurrency,
	}); err != nil {
		a.logf("upload of %s failed: %v", key, err)
		return TransportError{Op: "upload", Key: key, Err: err}
	}

	f.URL = u
	a.logf("uploaded %s to %s", key, u)

	return nil
}

// Delete deletes the object behind f.URL.
// A missing object is reported like any other transport failure.
func (a *Adapter) Delete(ctx context.Context, f File) error {
	key, err := a.Mapper().RecoverKey(f.URL)
	if err != nil {
		return err
	}

	a.logf("deleting %s", key)

	if err := a.Disk.Delete(ctx, key); err != nil {
		a.logf("delete of %s failed: %v", key, err)
		return TransportError{Op: "delete", Key: key, Err: err}
	}

	a.logf("deleted %s", key)

	return nil
}

func (a *Adapter) logf(format string, v ...interface{}) {
	if a.Config.Logger != nil {
		a.Config.Logger.Printf(format, v...)
	}
}

// TransportError wraps a failure of the underlying storage SDK.
type TransportError struct {
	Op  string
	Key string
	Err error
}

func (err TransportError) Error() string {
	return fmt.Sprintf("%s '%s': %v", err.Op, err.Key, err.Err)
}

func (err TransportError) Unwrap() error {
	return err.Err
}

// ConfigError means a provider cannot be initialized from its configuration.
type ConfigError struct {
	Provider string
	Key      string
	Details  string
}

func (err ConfigError) Error() string {
	return fmt.Sprintf("invalid %s configuration value for key '%s': %s", err.Provider, err.Key, err.Details)
}
