package gcs

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/storage"
	"github.com/bounoable/mediadrive"
	"google.golang.org/api/option"
)

const (
	// Provider is the provider name for Google Cloud Storage.
	Provider = "gcs"
)

// Register registers Google Cloud Storage as a provider for the autowire.
func Register(cfg *mediadrive.AutoWireConfig) {
	cfg.RegisterProvider(Provider, mediadrive.DiskCreatorFunc(NewAutoWire))
}

// NewAutoWire creates a new Google Cloud Storage disk from an autowire configuration.
func NewAutoWire(ctx context.Context, cfg map[string]interface{}) (mediadrive.Disk, error) {
	if cfg == nil {
		cfg = make(map[string]interface{})
	}

	serviceAccountPath, ok := cfg["serviceAccount"].(string)
	if !ok || serviceAccountPath == "" {
		return nil, configError("serviceAccount", "service account path must be set")
	}

	if _, err := os.Stat(serviceAccountPath); err != nil {
		return nil, configError("serviceAccount", fmt.Sprintf("service account file not found: %v", err))
	}

	bucket, ok := cfg["bucket"].(string)
	if !ok || bucket == "" {
		return nil, configError("bucket", "storage bucket must be set")
	}

	rpublic, ok := cfg["public"]
	if ok {
		if _, ok := rpublic.(bool); !ok {
			return nil, configError("public", fmt.Sprintf("public option must be a boolean but it is '%T'", rpublic))
		}
	}
	public, _ := rpublic.(bool)

	baseURL, _ := cfg["baseURL"].(string)

	client, err := storage.NewClient(ctx, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, err
	}

	return NewDisk(client, bucket, Public(public), BaseURL(baseURL)), nil
}

func configError(key, details string) mediadrive.ConfigError {
	return mediadrive.ConfigError{
		Provider: Provider,
		Key:      key,
		Details:  details,
	}
}
