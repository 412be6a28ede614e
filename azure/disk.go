// Package azure provides the Azure Blob Storage disk implementation.
package azure

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/bounoable/mediadrive"
)

// Disk is the Azure Blob Storage disk. It is bound to a single container.
type Disk struct {
	Credential *azblob.SharedKeyCredential
	Config     Config
}

// Config is the disk configuration.
type Config struct {
	ServiceBaseURL string
	Container      string
	ClientOptions  *blockblob.ClientOptions
}

// Option is a disk configuration option.
type Option func(*Config)

// ServiceBaseURL overrides the blob service URL of the storage account.
func ServiceBaseURL(url string) Option {
	return func(cfg *Config) {
		cfg.ServiceBaseURL = url
	}
}

// ClientOptions configures the pipeline of the blob clients.
func ClientOptions(opts *blockblob.ClientOptions) Option {
	return func(cfg *Config) {
		cfg.ClientOptions = opts
	}
}

// DefaultServiceBaseURL returns the blob service URL of an account.
func DefaultServiceBaseURL(account string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net", account)
}

// NewDisk creates a new Azure Blob Storage disk.
func NewDisk(cred *azblob.SharedKeyCredential, container string, options ...Option) *Disk {
	if cred == nil {
		panic("invalid azure shared key credential")
	}

	cfg := Config{Container: container}
	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.ServiceBaseURL == "" {
		cfg.ServiceBaseURL = DefaultServiceBaseURL(cred.AccountName())
	}

	return &Disk{
		Credential: cred,
		Config:     cfg,
	}
}

// BaseURL returns the URL of the container.
func (d *Disk) BaseURL() string {
	return strings.TrimRight(d.Config.ServiceBaseURL, "/") + "/" + d.Config.Container
}

func (d *Disk) blob(key string) (*blockblob.Client, error) {
	u := mediadrive.Mapper{StorageBaseURL: d.BaseURL()}.StorageURL(key)
	return blockblob.NewClientWithSharedKeyCredential(u, d.Credential, d.Config.ClientOptions)
}

// Put streams b as a block blob to the given key.
func (d *Disk) Put(ctx context.Context, key string, b []byte, opts mediadrive.PutOptions) error {
	client, err := d.blob(key)
	if err != nil {
		return err
	}

	opts = opts.WithDefaults()
	uploadOpts := &blockblob.UploadStreamOptions{
		BlockSize:   opts.BlockSize,
		Concurrency: opts.Concurrency,
	}
	if opts.ContentType != "" {
		uploadOpts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: to.Ptr(opts.ContentType)}
	}

	_, err = client.UploadStream(ctx, bytes.NewReader(b), uploadOpts)
	return err
}

// Delete deletes the blob with the given key.
func (d *Disk) Delete(ctx context.Context, key string) error {
	client, err := d.blob(key)
	if err != nil {
		return err
	}

	_, err = client.Delete(ctx, nil)
	return err
}
