package mediadrive

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AutoWireConfig contains the configuration for the provider autowire.
type AutoWireConfig struct {
	Disks           map[string]DiskCreatorConfig
	Creators        map[string]DiskCreator
	DefaultDiskName string
	CDN             CDNConfig

	// Options are applied to every Adapter before the per-disk configuration.
	Options []Option
}

// CDNConfig is the image CDN namespace shared by all disks.
type CDNConfig struct {
	ServiceBaseURL string `yaml:"serviceBaseURL"`
}

// DiskCreatorConfig is the configuration for the creation of a single storage disk.
type DiskCreatorConfig struct {
	Provider string
	Config   map[string]interface{}
}

// DiskCreator creates storage disks.
type DiskCreator interface {
	CreateDisk(ctx context.Context, cfg map[string]interface{}) (Disk, error)
}

// DiskCreatorFunc creates storage disks.
type DiskCreatorFunc func(context.Context, map[string]interface{}) (Disk, error)

// CreateDisk creates a storage disk.
func (fn DiskCreatorFunc) CreateDisk(ctx context.Context, cfg map[string]interface{}) (Disk, error) {
	return fn(ctx, cfg)
}

// NewAutoWire returns a new autowire configuration.
// Storage providers are registered by passing their Register functions.
func NewAutoWire(registrations ...func(*AutoWireConfig)) *AutoWireConfig {
	cfg := &AutoWireConfig{
		Disks:    make(map[string]DiskCreatorConfig),
		Creators: make(map[string]DiskCreator),
	}

	for _, register := range registrations {
		register(cfg)
	}

	return cfg
}

// RegisterProvider registers a storage disk creator.
func (cfg *AutoWireConfig) RegisterProvider(name string, creator DiskCreator) {
	cfg.Creators[name] = creator
}

// Configure adds a disk to the configuration.
func (cfg *AutoWireConfig) Configure(diskname, provider string, config map[string]interface{}) {
	if config == nil {
		config = make(map[string]interface{})
	}

	cfg.Disks[diskname] = DiskCreatorConfig{
		Provider: provider,
		Config:   config,
	}
}

// NewManager creates a new Manager with an Adapter for every configured disk.
func (cfg *AutoWireConfig) NewManager(ctx context.Context) (*Manager, error) {
	m := New()

	if cfg.DefaultDiskName != "" {
		if _, ok := cfg.Disks[cfg.DefaultDiskName]; !ok {
			return nil, UnconfiguredProviderError{Name: cfg.DefaultDiskName}
		}
	}

	names := make([]string, 0, len(cfg.Disks))
	for diskname := range cfg.Disks {
		names = append(names, diskname)
	}
	sort.Strings(names)

	for _, diskname := range names {
		diskcfg := cfg.Disks[diskname]

		creator, ok := cfg.Creators[diskcfg.Provider]
		if !ok {
			return nil, UnregisteredProviderError{Provider: diskcfg.Provider}
		}

		options, err := adapterOptions(diskname, diskcfg.Config)
		if err != nil {
			return nil, err
		}

		disk, err := creator.CreateDisk(ctx, diskcfg.Config)
		if err != nil {
			return nil, fmt.Errorf("create disk '%s': %w", diskname, err)
		}

		options = append(append([]Option{CDN(cfg.CDN.ServiceBaseURL)}, cfg.Options...), options...)

		var configureOptions []ConfigureOption
		if diskname == cfg.DefaultDiskName {
			configureOptions = append(configureOptions, Default())
		}

		if err := m.Configure(diskname, NewAdapter(disk, options...), append(configureOptions, Replace())...); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// adapterOptions reads the configuration keys every provider shares.
func adapterOptions(diskname string, cfg map[string]interface{}) ([]Option, error) {
	var options []Option

	if raw, ok := cfg["defaultPath"]; ok {
		path, ok := raw.(string)
		if !ok {
			return nil, InvalidConfigValueError{
				DiskName:  diskname,
				ConfigKey: "defaultPath",
				Expected:  "",
				Provided:  raw,
			}
		}
		options = append(options, DefaultPath(strings.TrimSpace(path)))
	}

	for _, key := range []string{"maxConcurrent", "maxConcurent"} {
		raw, ok := cfg[key]
		if !ok {
			continue
		}
		n, ok := intValue(raw)
		if !ok {
			return nil, InvalidConfigValueError{
				DiskName:  diskname,
				ConfigKey: key,
				Expected:  0,
				Provided:  raw,
			}
		}
		options = append(options, MaxConcurrency(n))
		break
	}

	if raw, ok := cfg["uploadTimeout"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, InvalidConfigValueError{
				DiskName:  diskname,
				ConfigKey: "uploadTimeout",
				Expected:  "",
				Provided:  raw,
			}
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("parse uploadTimeout of disk '%s': %w", diskname, err)
		}
		options = append(options, UploadTimeout(d))
	}

	return options, nil
}

func intValue(v interface{}) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// UnregisteredProviderError means the configuration contains a disk with an unregistered provider.
type UnregisteredProviderError struct {
	Provider string
}

func (err UnregisteredProviderError) Error() string {
	return fmt.Sprintf("unregistered storage provider '%s'", err.Provider)
}

// Load loads the disk configuration from a file.
// It checks against provided file extensions and
// returns an error if the filetype is unsupported.
func (cfg *AutoWireConfig) Load(path string) error {
	ext := filepath.Ext(path)

	switch ext {
	case ".yml":
		fallthrough
	case ".yaml":
		return cfg.LoadYAML(path)
	default:
		return fmt.Errorf("unknown file extension for disk configuration '%s'", ext)
	}
}

// LoadYAML loads the disk configuration from a YAML file.
func (cfg *AutoWireConfig) LoadYAML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return cfg.LoadYAMLReader(f)
}

// LoadYAMLReader loads the disk configuration from the YAML in r.
func (cfg *AutoWireConfig) LoadYAMLReader(r io.Reader) error {
	var yamlcfg autowireYamlConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&yamlcfg); err != nil {
		return err
	}

	return yamlcfg.apply(cfg)
}

type autowireYamlConfig struct {
	Default string    `yaml:"default"`
	Imgix   CDNConfig `yaml:"imgix"`

	// map[DISKNAME]map[CONFIGKEY]interface{}
	Disks map[string]map[string]interface{} `yaml:"disks"`
}

func (cfg autowireYamlConfig) apply(config *AutoWireConfig) error {
	disks := make(map[string]DiskCreatorConfig)

	for diskname, diskcfg := range cfg.Disks {
		provider, ok := diskcfg["provider"].(string)
		if !ok {
			return InvalidConfigValueError{
				DiskName:  diskname,
				ConfigKey: "provider",
				Expected:  "",
				Provided:  diskcfg["provider"],
			}
		}

		varcfg := make(map[string]interface{})

		if ivarcfg, ok := diskcfg["config"]; ok && ivarcfg != nil {
			tcfg, ok := ivarcfg.(map[string]interface{})
			if !ok {
				return InvalidConfigValueError{
					DiskName:  diskname,
					ConfigKey: "config",
					Expected:  map[string]interface{}{},
					Provided:  ivarcfg,
				}
			}
			varcfg = tcfg
		}

		disks[diskname] = DiskCreatorConfig{
			Provider: provider,
			Config:   varcfg,
		}
	}

	for diskname, creatorcfg := range disks {
		config.Configure(diskname, creatorcfg.Provider, creatorcfg.Config)
	}

	if cfg.Default != "" {
		config.DefaultDiskName = cfg.Default
	}

	if cfg.Imgix.ServiceBaseURL != "" {
		config.CDN.ServiceBaseURL = strings.TrimSpace(cfg.Imgix.ServiceBaseURL)
	}

	return nil
}

// InvalidConfigValueError means a configuration value for a disk has a wrong type.
type InvalidConfigValueError struct {
	DiskName  string
	ConfigKey string
	Expected  interface{}
	Provided  interface{}
}

func (err InvalidConfigValueError) Error() string {
	return fmt.Sprintf("invalid config value for disk '%s': '%s' must be a '%T' but is a '%T'", err.DiskName, err.ConfigKey, err.Expected, err.Provided)
}
