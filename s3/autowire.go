package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bounoable/mediadrive"
)

const (
	// Provider is the provider name for Amazon S3.
	Provider = "s3"
)

// Register registers Amazon S3 as a provider for the autowire.
func Register(cfg *mediadrive.AutoWireConfig) {
	cfg.RegisterProvider(Provider, mediadrive.DiskCreatorFunc(NewAutoWire))
}

// NewAutoWire creates a new Amazon S3 disk from an autowire configuration.
func NewAutoWire(ctx context.Context, cfg map[string]interface{}) (mediadrive.Disk, error) {
	if cfg == nil {
		cfg = make(map[string]interface{})
	}

	region, ok := cfg["region"].(string)
	if !ok || region == "" {
		return nil, configError("region", "region must be set")
	}

	bucket, ok := cfg["bucket"].(string)
	if !ok || bucket == "" {
		return nil, configError("bucket", "storage bucket must be set")
	}

	accessKeyID, ok := cfg["accessKeyId"].(string)
	if !ok || accessKeyID == "" {
		return nil, configError("accessKeyId", "accessKeyId must be set")
	}

	secretAccessKey, ok := cfg["secretAccessKey"].(string)
	if !ok || secretAccessKey == "" {
		return nil, configError("secretAccessKey", "secretAccessKey must be set")
	}

	rpublic, ok := cfg["public"]
	if ok {
		if _, ok := rpublic.(bool); !ok {
			return nil, configError("public", fmt.Sprintf("public option must be a boolean but it is '%T'", rpublic))
		}
	}
	public, _ := rpublic.(bool)

	baseURL, _ := cfg["baseURL"].(string)

	awscfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewDisk(s3.NewFromConfig(awscfg), region, bucket, Public(public), BaseURL(baseURL)), nil
}

func configError(key, details string) mediadrive.ConfigError {
	return mediadrive.ConfigError{
		Provider: Provider,
		Key:      key,
		Details:  details,
	}
}
