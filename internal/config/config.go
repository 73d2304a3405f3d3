package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/waytab/waytab/internal/logger"
)

// Config holds the daemon's persisted settings.
type Config struct {
	// Backend names the compositor control protocol (niri, sway, hyprland,
	// kwin, gnome). Only niri and hyprland have working adapters.
	Backend string `json:"backend" yaml:"backend"`

	LogLevel string `json:"log_level" yaml:"log_level"`

	// SocketName is the control socket file name inside XDG_RUNTIME_DIR.
	SocketName string `json:"socket_name" yaml:"socket_name"`

	// HotkeyEnabled controls the raw input device monitor. When disabled
	// the daemon is driven via the control socket only.
	HotkeyEnabled bool `json:"hotkey_enabled" yaml:"hotkey_enabled"`

	IconSize  int    `json:"icon_size" yaml:"icon_size"`
	IconTheme string `json:"icon_theme" yaml:"icon_theme"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configFile means
// the default ~/.config/waytab/config.yaml, created with defaults when
// missing.
func NewManager(configFile string) (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "waytab")
	actualConfigPath := filepath.Join(configDir, "config.yaml")
	if configFile != "" {
		actualConfigPath = configFile
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("backend", m.config.Backend).
		Msg("Config loaded")

	return m, nil
}

func getDefaults() *Config {
	return &Config{
		LogLevel:      "info",
		SocketName:    "waytab.sock",
		HotkeyEnabled: true,
		IconSize:      77,
		IconTheme:     "hicolor",
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Fill unset fields with defaults so a partial config stays usable.
	defaults := getDefaults()
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.SocketName == "" {
		cfg.SocketName = defaults.SocketName
	}
	if cfg.IconSize <= 0 {
		cfg.IconSize = defaults.IconSize
	}
	if cfg.IconTheme == "" {
		cfg.IconTheme = defaults.IconTheme
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return getDefaults()
	}
	cfg := *m.config
	return &cfg
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetBackend overrides the configured backend (from the CLI flag).
func (m *Manager) SetBackend(backend string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config == nil {
		m.config = getDefaults()
	}
	m.config.Backend = backend
}

// SetLogLevel overrides the configured log level.
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config == nil {
		m.config = getDefaults()
	}
	m.config.LogLevel = level
}

// GetConfigPath returns the path of the loaded config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
