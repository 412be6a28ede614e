package azure

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/bounoable/mediadrive"
)

const (
	// Provider is the provider name for Azure Blob Storage.
	Provider = "azure"
)

// Register registers Azure Blob Storage as a provider for the autowire.
func Register(cfg *mediadrive.AutoWireConfig) {
	cfg.RegisterProvider(Provider, mediadrive.DiskCreatorFunc(NewAutoWire))
}

// NewAutoWire creates a new Azure Blob Storage disk from an autowire configuration.
// Account name and key are trimmed; serviceBaseURL defaults to the public endpoint of the account.
func NewAutoWire(_ context.Context, cfg map[string]interface{}) (mediadrive.Disk, error) {
	if cfg == nil {
		cfg = make(map[string]interface{})
	}

	account := trimParam(cfg["account"])
	if account == "" {
		return nil, configError("account", "account name must be set")
	}

	accountKey := trimParam(cfg["accountKey"])
	if accountKey == "" {
		return nil, configError("accountKey", "account key must be set")
	}

	container := trimParam(cfg["containerName"])
	if container == "" {
		return nil, configError("containerName", "container name must be set")
	}

	cred, err := azblob.NewSharedKeyCredential(account, accountKey)
	if err != nil {
		return nil, configError("accountKey", err.Error())
	}

	return NewDisk(cred, container, ServiceBaseURL(trimParam(cfg["serviceBaseURL"]))), nil
}

func trimParam(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func configError(key, details string) mediadrive.ConfigError {
	return mediadrive.ConfigError{
		Provider: Provider,
		Key:      key,
		Details:  details,
	}
}
