package mediadrive

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoDefaultProvider is returned on Provider operations when no default Provider is set.
	ErrNoDefaultProvider = errors.New("no default provider specified")
)

// Manager is a container for multiple Providers and is itself also a Provider.
// Provider operations are delegated to the configured default Provider.
// Manager is thread-safe.
type Manager struct {
	mux             sync.RWMutex
	providers       map[string]Provider
	defaultProvider string
}

// New returns a new provider manager. The manager is a container for multiple storage providers
// and also implements the Provider interface, so it can be directly used to access the configured default provider.
//
// Normally you don't instantiate the manager with New() but through the AutoWire config.
func New() *Manager {
	return &Manager{
		providers: make(map[string]Provider),
	}
}

// ConfigureOption is a Provider configuration option.
type ConfigureOption func(*configureConfig)

type configureConfig struct {
	replace   bool
	asDefault bool
}

// Replace will replace the previously configured Provider with the same name.
func Replace() ConfigureOption {
	return func(cfg *configureConfig) {
		cfg.replace = true
	}
}

// Default makes the Provider the default Provider.
func Default() ConfigureOption {
	return func(cfg *configureConfig) {
		cfg.asDefault = true
	}
}

// Configure adds a Provider to the Manager.
// If the name is already in use, it returns a DuplicateNameError unless the Replace option is used.
// The first Provider will automatically be made the default Provider, even if the Default option is not used.
func (m *Manager) Configure(name string, provider Provider, options ...ConfigureOption) error {
	var cfg configureConfig
	for _, opt := range options {
		opt(&cfg)
	}

	m.mux.Lock()
	defer m.mux.Unlock()

	if _, ok := m.providers[name]; ok && !cfg.replace {
		return DuplicateNameError{Name: name}
	}

	m.providers[name] = provider

	if cfg.asDefault || len(m.providers) == 1 {
		m.defaultProvider = name
	}

	return nil
}

// DuplicateNameError is returned when a Provider is added to a Manager with a name that was already used.
type DuplicateNameError struct {
	Name string
}

func (err DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate provider name: %s", err.Name)
}

// RemoveProvider removes the Provider with the configured name from the Manager.
func (m *Manager) RemoveProvider(name string) {
	m.mux.Lock()
	defer m.mux.Unlock()
	delete(m.providers, name)
}

// Provider returns the Provider with the configured name.
// If no Provider with the name is configured, it returns an UnconfiguredProviderError.
func (m *Manager) Provider(name string) (Provider, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	provider, ok := m.providers[name]
	if !ok {
		return nil, UnconfiguredProviderError{Name: name}
	}

	return provider, nil
}

// DefaultName returns the name of the default Provider.
func (m *Manager) DefaultName() string {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.defaultProvider
}

// UnconfiguredProviderError is returned when no Provider can be found for a name.
type UnconfiguredProviderError struct {
	Name string
}

func (err UnconfiguredProviderError) Error() string {
	return fmt.Sprintf("unconfigured provider: %s", err.Name)
}

func (m *Manager) defaultOne() (Provider, error) {
	provider, err := m.Provider(m.DefaultName())
	if err != nil {
		if errors.As(err, &UnconfiguredProviderError{}) {
			return nil, ErrNoDefaultProvider
		}

		return nil, err
	}

	return provider, nil
}

// Upload uploads the file with the default Provider.
// If no default Provider is set, it returns ErrNoDefaultProvider.
func (m *Manager) Upload(ctx context.Context, f *File) error {
	provider, err := m.defaultOne()
	if err != nil {
		return err
	}

	return provider.Upload(ctx, f)
}

// Delete deletes the file with the default Provider.
// If no default Provider is set, it returns ErrNoDefaultProvider.
func (m *Manager) Delete(ctx context.Context, f File) error {
	provider, err := m.defaultOne()
	if err != nil {
		return err
	}

	return provider.Delete(ctx, f)
}
