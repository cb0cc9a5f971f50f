package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	appName    = "venue"
	configFile = "config.yaml"
	envPrefix  = "VENUE"

	// DefaultBridgePort is the loopback port of the command bridge
	DefaultBridgePort = 47613
)

// Config holds the application configuration
type Config struct {
	BridgePort    int     `mapstructure:"bridge_port"`
	TrayAnchorX   float64 `mapstructure:"tray_anchor_x"`
	TrayAnchorY   float64 `mapstructure:"tray_anchor_y"`
	Tooltip       string  `mapstructure:"tooltip"`
	NotifyOnReady bool    `mapstructure:"notify_on_ready"`
	NotifyOnError bool    `mapstructure:"notify_on_error"`
	LogLevel      string  `mapstructure:"log_level"`
	InitialStatus string  `mapstructure:"initial_status"`
}

// Manager handles configuration loading and saving
type Manager struct {
	mu       sync.RWMutex
	v        *viper.Viper
	config   Config
	filePath string
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BridgePort:    DefaultBridgePort,
		TrayAnchorX:   0,
		TrayAnchorY:   0,
		Tooltip:       "Venue",
		NotifyOnReady: true,
		NotifyOnError: true,
		LogLevel:      "info",
		InitialStatus: "",
	}
}

// DefaultPath returns the config file location under the XDG config home
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appName, configFile))
}

// NewManager creates a new configuration manager. An empty path selects
// DefaultPath. A missing file is not an error.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	m := &Manager{
		v:        v,
		config:   DefaultConfig(),
		filePath: path,
	}

	if err := m.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return m, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("bridge_port", d.BridgePort)
	v.SetDefault("tray_anchor_x", d.TrayAnchorX)
	v.SetDefault("tray_anchor_y", d.TrayAnchorY)
	v.SetDefault("tooltip", d.Tooltip)
	v.SetDefault("notify_on_ready", d.NotifyOnReady)
	v.SetDefault("notify_on_error", d.NotifyOnError)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("initial_status", d.InitialStatus)
}

// Load reads the configuration from disk and the environment. When the file
// does not exist the defaults and environment still apply and the returned
// error satisfies os.IsNotExist.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	readErr := m.v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) && !os.IsNotExist(readErr) {
			return fmt.Errorf("failed to read config: %w", readErr)
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Fall back to defaults for unusable values
	defaults := DefaultConfig()
	if cfg.BridgePort < 1 || cfg.BridgePort > 65535 {
		cfg.BridgePort = defaults.BridgePort
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); cfg.LogLevel == "" || err != nil {
		cfg.LogLevel = defaults.LogLevel
	}

	m.config = cfg
	if readErr != nil {
		return os.ErrNotExist
	}
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	c := m.config
	m.v.Set("bridge_port", c.BridgePort)
	m.v.Set("tray_anchor_x", c.TrayAnchorX)
	m.v.Set("tray_anchor_y", c.TrayAnchorY)
	m.v.Set("tooltip", c.Tooltip)
	m.v.Set("notify_on_ready", c.NotifyOnReady)
	m.v.Set("notify_on_error", c.NotifyOnError)
	m.v.Set("log_level", c.LogLevel)
	m.v.Set("initial_status", c.InitialStatus)

	if err := m.v.WriteConfigAs(m.filePath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(m.filePath, 0600)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetNotifyOnReady updates the finished build notification toggle and saves
func (m *Manager) SetNotifyOnReady(enabled bool) error {
	m.mu.Lock()
	m.config.NotifyOnReady = enabled
	m.mu.Unlock()
	return m.Save()
}

// SetNotifyOnError updates the failed build notification toggle and saves
func (m *Manager) SetNotifyOnError(enabled bool) error {
	m.mu.Lock()
	m.config.NotifyOnError = enabled
	m.mu.Unlock()
	return m.Save()
}

// FilePath returns the path to the config file
func (m *Manager) FilePath() string {
	return m.filePath
}
