package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"houndgrip/internal/eventbus"
)

// EnvServer overrides the configured server URL
const EnvServer = "HOUND_URL"

const (
	DefaultServer  = "http://localhost:6080"
	DefaultTimeout = 30 * time.Second
)

// Config represents the application configuration
type Config struct {
	Version     int                `toml:"version"`
	Server      string             `toml:"server"`
	Timeout     string             `toml:"timeout"`
	Preferences PreferenceSettings `toml:"preferences"`
	UISettings  UISettings         `toml:"ui"`
}

// PreferenceSettings mirror the search page's persisted preferences
type PreferenceSettings struct {
	AutoHideAdvanced bool `toml:"auto_hide_advanced"`
	IgnoreCase       bool `toml:"ignore_case"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ContextHighlight bool `toml:"context_highlight"`
	ShowStats        bool `toml:"show_stats"`
}

// RequestTimeout parses Timeout, falling back to DefaultTimeout
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		log.Printf("Config: ignoring invalid timeout %q", c.Timeout)
		return DefaultTimeout
	}
	return d
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
	Watch(ctx context.Context, prefs *Preferences, onChange func(*Config)) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// Dir returns the houndgrip config directory, creating it if needed
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	dir := filepath.Join(configDir, "houndgrip")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Config: could not create %s: %v", dir, err)
	}
	return dir
}

// NewConfigService creates a config service for path, or the default location when path is empty
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = filepath.Join(Dir(), "config.toml")
	}
	return &configService{filePath: path}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, using defaults when there is none.
// HOUND_URL takes precedence over the file.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	if env := strings.TrimSpace(os.Getenv(EnvServer)); env != "" {
		cfg.Server = env
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path.
// Fields missing from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server:  DefaultServer,
		Timeout: DefaultTimeout.String(),
		UISettings: UISettings{
			ContextHighlight: true,
			ShowStats:        true,
		},
	}
}
