// Package gcs provides the Google Cloud Storage disk implementation.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/bounoable/mediadrive"
)

// Disk is the Google Cloud Storage disk.
type Disk struct {
	Client *gcs.Client
	Config Config
}

// Config is the disk configuration.
type Config struct {
	Bucket  string
	Public  bool
	BaseURL string
}

// Option is a disk configuration option.
type Option func(*Config)

// Public configures the disk to make all uploaded files publicly accessible.
// Note that this option will not work and storing files will return an error
// if "uniform bucket-level access" is configured on the bucket, because
// individual ACL for specific objects is not available for those buckets.
func Public(public bool) Option {
	return func(cfg *Config) {
		cfg.Public = public
	}
}

// BaseURL overrides the public URL of the bucket.
func BaseURL(url string) Option {
	return func(cfg *Config) {
		cfg.BaseURL = url
	}
}

// NewDisk creates a new Google Cloud Storage disk.
func NewDisk(client *gcs.Client, bucket string, options ...Option) *Disk {
	if client == nil {
		panic("invalid google cloud storage client")
	}

	cfg := Config{Bucket: bucket}
	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://storage.googleapis.com/%s", bucket)
	}

	return &Disk{
		Client: client,
		Config: cfg,
	}
}

// Put writes b to the object with the given key in chunks of opts.BlockSize.
// Concurrency is not configurable for resumable uploads and is ignored.
func (d *Disk) Put(ctx context.Context, key string, b []byte, opts mediadrive.PutOptions) error {
	opts = opts.WithDefaults()
	obj := d.Client.Bucket(d.Config.Bucket).Object(key)

	w := obj.NewWriter(ctx)
	w.ChunkSize = int(opts.BlockSize)
	w.ContentType = opts.ContentType

	if _, err := io.Copy(w, bytes.NewReader(b)); err != nil {
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	if d.Config.Public {
		return d.makePublic(ctx, obj)
	}

	return nil
}

func (d *Disk) makePublic(ctx context.Context, obj *gcs.ObjectHandle) error {
	return obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader)
}

// Delete deletes the object with the given key.
func (d *Disk) Delete(ctx context.Context, key string) error {
	return d.Client.Bucket(d.Config.Bucket).Object(key).Delete(ctx)
}

// BaseURL returns the public URL of the bucket.
func (d *Disk) BaseURL() string {
	return strings.TrimRight(d.Config.BaseURL, "/")
}
