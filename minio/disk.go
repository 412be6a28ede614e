// Package minio provides a disk for S3-compatible object stores like MinIO or Backblaze B2.
package minio

import (
	"bytes"
	"context"
	"strings"

	"github.com/bounoable/mediadrive"
	"github.com/minio/minio-go/v7"
)

// minPartSize is the smallest part size accepted for multipart uploads.
const minPartSize = 5 * 1024 * 1024

// Disk is the S3-compatible disk.
type Disk struct {
	Client *minio.Client
	Config Config
}

// Config is the disk configuration.
type Config struct {
	Bucket    string
	PublicURL string
}

// Option is a disk configuration option.
type Option func(*Config)

// PublicURL overrides the public URL of the bucket, e.g. when it is served through a proxy.
func PublicURL(url string) Option {
	return func(cfg *Config) {
		cfg.PublicURL = url
	}
}

// NewDisk creates a new S3-compatible disk.
// Without a PublicURL the bucket is addressed path-style on the client endpoint.
func NewDisk(client *minio.Client, bucket string, options ...Option) *Disk {
	if client == nil {
		panic("invalid minio client")
	}

	cfg := Config{Bucket: bucket}
	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.PublicURL == "" {
		cfg.PublicURL = strings.TrimRight(client.EndpointURL().String(), "/") + "/" + bucket
	}

	return &Disk{
		Client: client,
		Config: cfg,
	}
}

// Put uploads b to the object with the given key.
func (d *Disk) Put(ctx context.Context, key string, b []byte, opts mediadrive.PutOptions) error {
	opts = opts.WithDefaults()

	partSize := uint64(opts.BlockSize)
	if partSize < minPartSize {
		partSize = minPartSize
	}

	_, err := d.Client.PutObject(ctx, d.Config.Bucket, key, bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{
		ContentType: opts.ContentType,
		PartSize:    partSize,
		NumThreads:  uint(opts.Concurrency),
	})
	return err
}

// Delete deletes the object with the given key.
// S3-compatible stores report success for missing objects.
func (d *Disk) Delete(ctx context.Context, key string) error {
	return d.Client.RemoveObject(ctx, d.Config.Bucket, key, minio.RemoveObjectOptions{})
}

// BaseURL returns the public URL of the bucket.
func (d *Disk) BaseURL() string {
	return strings.TrimRight(d.Config.PublicURL, "/")
}
