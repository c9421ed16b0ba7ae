package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
	"github.com/bryanchriswhite/EdgeViewer/internal/logger"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	ServerPort int    `json:"server_port" yaml:"server_port" mapstructure:"server_port"`
	LogLevel   string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty  bool   `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`

	PageTitle       string             `json:"page_title" yaml:"page_title" mapstructure:"page_title"`
	RefreshButtonID string             `json:"refresh_button_id" yaml:"refresh_button_id" mapstructure:"refresh_button_id"`
	ReadbackDelay   time.Duration      `json:"readback_delay" yaml:"readback_delay" mapstructure:"readback_delay"`
	Viewer          frame.ViewerConfig `json:"viewer" yaml:"viewer" mapstructure:"viewer"`
}

// ErrUnknownKey is returned by Set for keys the config does not define.
var ErrUnknownKey = errors.New("unknown config key")

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the values that would break startup.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid server_port %d (use 1-65535)", c.ServerPort))
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("invalid log_level %q (use: debug, info, warn, error)", c.LogLevel))
	}
	if c.ReadbackDelay < 0 {
		errs = append(errs, fmt.Errorf("invalid readback_delay %s", c.ReadbackDelay))
	}
	return errors.Join(errs...)
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		ServerPort:      8080,
		LogLevel:        "info",
		PageTitle:       "Edge Detector Web Viewer",
		RefreshButtonID: "refresh-btn",
		ReadbackDelay:   time.Second,
		Viewer: frame.ViewerConfig{
			ContainerID: "viewer-container",
			ShowStats:   true,
			AutoUpdate:  false,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("page_title", d.PageTitle)
	v.SetDefault("refresh_button_id", d.RefreshButtonID)
	v.SetDefault("readback_delay", d.ReadbackDelay)
	v.SetDefault("viewer.container_id", d.Viewer.ContainerID)
	v.SetDefault("viewer.show_stats", d.Viewer.ShowStats)
	v.SetDefault("viewer.auto_update", d.Viewer.AutoUpdate)
}

// Keys lists every settable key in dotted form.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	slices.Sort(keys)
	return keys
}

// Manager handles configuration
type Manager struct {
	configPath string
	v          *viper.Viper
	config     *Config
	mu         sync.RWMutex
}

// DefaultPath returns $HOME/.config/edgeviewer/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "edgeviewer", "config.yaml"), nil
}

// NewManager loads configFile, or the default path when empty. A missing
// file is created with defaults.
func NewManager(configFile string) (*Manager, error) {
	path := configFile
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	m := &Manager{
		configPath: path,
		v:          v,
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logger.WithComponent("config").Info().
			Str("path", m.configPath).
			Msg("Config file not found, creating new config")
		if err := m.reload(); err != nil {
			return nil, err
		}
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return m, nil
	}

	if err := m.reload(); err != nil {
		return nil, err
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config loaded")
	return m, nil
}

// reload decodes the viper state into a fresh Config.
func (m *Manager) reload() error {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	cfg := *m.config
	return &cfg
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	cfg := m.Get()

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Saving config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("config_dir", configDir).
			Msg("Failed to create config directory")
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config saved successfully")
	return nil
}

// Set changes a single key (dotted for nested values) and saves. The
// value is rejected, and nothing is written, if the key is unknown or the
// result does not validate.
func (m *Manager) Set(key string, value interface{}) error {
	key = strings.ToLower(key)
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w %q (known keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	previous := m.v.Get(key)
	m.v.Set(key, value)
	if err := m.reload(); err != nil {
		m.v.Set(key, previous)
		return err
	}
	return m.Save()
}

// Lookup returns the value stored under key.
func (m *Manager) Lookup(key string) (interface{}, bool) {
	if !m.v.IsSet(key) {
		return nil, false
	}
	return m.v.Get(key), true
}

// SetPort sets the server port
func (m *Manager) SetPort(port int) error {
	return m.Set("server_port", port)
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	return m.Set("log_level", level)
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
