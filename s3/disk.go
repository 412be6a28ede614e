// Package s3 provides the Amazon S3 disk implementation.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bounoable/mediadrive"
)

// Disk is the Amazon S3 disk.
type Disk struct {
	Client *s3.Client
	Config Config
}

// Config is the disk configuration.
type Config struct {
	Bucket  string
	Region  string
	Public  bool
	BaseURL string
}

// Option is a disk configuration option.
type Option func(*Config)

// Public configures the disk to make all uploaded files publicly accessible.
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

// NewDisk creates a new Amazon S3 disk.
func NewDisk(client *s3.Client, region, bucket string, options ...Option) *Disk {
	cfg := Config{
		Region: region,
		Bucket: bucket,
	}

	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &Disk{
		Client: client,
		Config: cfg,
	}
}

// Put uploads b to the object with the given key.
// S3 requires parts of at least 5 MiB, so smaller block sizes are raised.
func (d *Disk) Put(ctx context.Context, key string, b []byte, opts mediadrive.PutOptions) error {
	opts = opts.WithDefaults()

	uploader := manager.NewUploader(d.Client, func(u *manager.Uploader) {
		u.PartSize = opts.BlockSize
		if u.PartSize < manager.MinUploadPartSize {
			u.PartSize = manager.MinUploadPartSize
		}
		u.Concurrency = opts.Concurrency
	})

	input := &s3.PutObjectInput{
		Bucket: aws.String(d.Config.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(b),
	}

	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if d.Config.Public {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	_, err := uploader.Upload(ctx, input)
	return err
}

// Delete deletes the object with the given key.
func (d *Disk) Delete(ctx context.Context, key string) error {
	_, err := d.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.Config.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// BaseURL returns the public URL of the bucket.
func (d *Disk) BaseURL() string {
	return strings.TrimRight(d.Config.BaseURL, "/")
}
