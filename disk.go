package mediadrive

import "context"

const (
	// DefaultBlockSize is the chunk size used for block and multipart uploads.
	DefaultBlockSize = 4 * 1024 * 1024

	// DefaultConcurrency is the default ceiling for parallel block uploads.
	DefaultConcurrency = 20
)

// Disk provides the base cloud storage functions an Adapter forwards to.
type Disk interface {
	// Put writes b to the object with the given key.
	Put(ctx context.Context, key string, b []byte, opts PutOptions) error
	// Delete deletes the object with the given key.
	Delete(ctx context.Context, key string) error
	// BaseURL returns the public URL of the container without a trailing slash.
	// Object URLs are formed by appending "/" and the escaped object key.
	BaseURL() string
}

// PutOptions are passed through to the storage SDK on every Put.
type PutOptions struct {
	ContentType string
	BlockSize   int64
	Concurrency int
}

// WithDefaults fills zero values with DefaultBlockSize and DefaultConcurrency.
func (opts PutOptions) WithDefaults() PutOptions {
	if opts.BlockSize <= 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return opts
}
