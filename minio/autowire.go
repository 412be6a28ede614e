package minio

import (
	"context"
	"fmt"

	"github.com/bounoable/mediadrive"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// Provider is the provider name for S3-compatible object stores.
	Provider = "minio"
)

// Register registers S3-compatible object stores as a provider for the autowire.
func Register(cfg *mediadrive.AutoWireConfig) {
	cfg.RegisterProvider(Provider, mediadrive.DiskCreatorFunc(NewAutoWire))
}

// NewAutoWire creates a new S3-compatible disk from an autowire configuration.
func NewAutoWire(_ context.Context, cfg map[string]interface{}) (mediadrive.Disk, error) {
	if cfg == nil {
		cfg = make(map[string]interface{})
	}

	endpoint, ok := cfg["endpoint"].(string)
	if !ok || endpoint == "" {
		return nil, configError("endpoint", "endpoint must be set")
	}

	bucket, ok := cfg["bucket"].(string)
	if !ok || bucket == "" {
		return nil, configError("bucket", "storage bucket must be set")
	}

	accessKey, ok := cfg["accessKey"].(string)
	if !ok || accessKey == "" {
		return nil, configError("accessKey", "accessKey must be set")
	}

	secretKey, ok := cfg["secretKey"].(string)
	if !ok || secretKey == "" {
		return nil, configError("secretKey", "secretKey must be set")
	}

	secure := true
	if rsecure, ok := cfg["useSSL"]; ok {
		b, ok := rsecure.(bool)
		if !ok {
			return nil, configError("useSSL", fmt.Sprintf("useSSL option must be a boolean but it is '%T'", rsecure))
		}
		secure = b
	}

	region, _ := cfg["region"].(string)
	publicURL, _ := cfg["publicURL"].(string)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return NewDisk(client, bucket, PublicURL(publicURL)), nil
}

func configError(key, details string) mediadrive.ConfigError {
	return mediadrive.ConfigError{
		Provider: Provider,
		Key:      key,
		Details:  details,
	}
}
