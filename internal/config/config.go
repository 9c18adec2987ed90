package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName names the config directory and the environment prefix
	AppName = "jdkprov"
	// EnvPrefix is prepended to environment overrides, e.g. JDKPROV_INSTALL_DIR
	EnvPrefix = "JDKPROV"

	DefaultAdoptiumURL = "https://api.adoptium.net"
	DefaultLogLevel    = "info"
)

// Config holds the application configuration
type Config struct {
	InstallDir       string       `mapstructure:"install_dir"`        // Managed installation root
	SearchPaths      []string     `mapstructure:"search_paths"`       // Extra directories whose children are Java installs
	AdoptiumURL      string       `mapstructure:"adoptium_url"`       // Adoptium API base URL
	IgnoreMacAArch64 bool         `mapstructure:"ignore_mac_aarch64"` // Provision x64 builds on Apple silicon
	LogLevel         string       `mapstructure:"log_level"`
	Update           UpdateConfig `mapstructure:"update"` // Auto-update configuration
	configPath       string
}

// UpdateConfig holds settings for auto-update feature
type UpdateConfig struct {
	Enabled     bool      `mapstructure:"enabled"`    // Master toggle for update functionality
	AutoCheck   bool      `mapstructure:"auto_check"` // Check for updates on startup
	LastCheck   time.Time `mapstructure:"-"`          // Last time update check was performed
	SkipVersion string    `mapstructure:"skip_version"`
	Repository  string    `mapstructure:"repository"` // GitHub owner/name publishing releases
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		InstallDir:  DefaultInstallDir(),
		SearchPaths: make([]string, 0),
		AdoptiumURL: DefaultAdoptiumURL,
		LogLevel:    DefaultLogLevel,
		Update: UpdateConfig{
			Enabled:   true,
			AutoCheck: true,
		},
		configPath: DefaultPath(),
	}
}

// DefaultInstallDir returns ~/.jdkprov/jdks
func DefaultInstallDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, "."+AppName, "jdks")
}

// DefaultPath returns the path to the configuration file
// Following XDG Base Directory specification
func DefaultPath() string {
	// Try XDG_CONFIG_HOME first (standard on Unix systems)
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome != "" {
		return filepath.Join(configHome, AppName, "config.json")
	}

	// Fallback to $HOME/.config/jdkprov/config.json (XDG default)
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".config", AppName, "config.json")
}

func newViper() *viper.Viper {
	defaults := Default()

	v := viper.New()
	v.SetConfigType("json")
	v.SetDefault("install_dir", defaults.InstallDir)
	v.SetDefault("search_paths", defaults.SearchPaths)
	v.SetDefault("adoptium_url", defaults.AdoptiumURL)
	v.SetDefault("ignore_mac_aarch64", defaults.IgnoreMacAArch64)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("update.enabled", defaults.Update.Enabled)
	v.SetDefault("update.auto_check", defaults.Update.AutoCheck)
	v.SetDefault("update.last_check", "")
	v.SetDefault("update.skip_version", defaults.Update.SkipVersion)
	v.SetDefault("update.repository", defaults.Update.Repository)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration at path, or at DefaultPath when path is empty.
// A missing file yields the defaults. Environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := newViper()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Remove BOM if present (UTF-8 BOM is EF BB BF)
		// This handles files created by PowerShell with Set-Content -Encoding UTF8
		data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	cfg.Update.LastCheck = v.GetTime("update.last_check")
	cfg.configPath = path

	if strings.TrimSpace(cfg.InstallDir) == "" {
		cfg.InstallDir = DefaultInstallDir()
	}
	cfg.InstallDir = expandHome(cfg.InstallDir)

	// Sanitize: remove empty and duplicate search paths
	paths := cfg.SearchPaths
	cfg.SearchPaths = make([]string, 0, len(paths))
	for _, p := range paths {
		cfg.AddSearchPath(p)
	}

	return cfg, nil
}

// Path returns the file the configuration is saved to
func (c *Config) Path() string {
	if c.configPath == "" {
		return DefaultPath()
	}
	return c.configPath
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	path := c.Path()

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("install_dir", c.InstallDir)
	v.Set("search_paths", c.SearchPaths)
	v.Set("adoptium_url", c.AdoptiumURL)
	v.Set("ignore_mac_aarch64", c.IgnoreMacAArch64)
	v.Set("log_level", c.LogLevel)
	v.Set("update.enabled", c.Update.Enabled)
	v.Set("update.auto_check", c.Update.AutoCheck)
	v.Set("update.skip_version", c.Update.SkipVersion)
	v.Set("update.repository", c.Update.Repository)
	if !c.Update.LastCheck.IsZero() {
		v.Set("update.last_check", c.Update.LastCheck.UTC().Format(time.RFC3339))
	}

	v.SetConfigType("json")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// AddSearchPath adds a search path for auto-detection
func (c *Config) AddSearchPath(path string) {
	// Normalize path
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	path = filepath.Clean(expandHome(path))

	// Check if already exists
	if c.HasSearchPath(path) {
		return
	}

	c.SearchPaths = append(c.SearchPaths, path)
}

// RemoveSearchPath removes a search path, reporting whether it was present
func (c *Config) RemoveSearchPath(path string) bool {
	path = filepath.Clean(expandHome(path))

	for i, p := range c.SearchPaths {
		if strings.EqualFold(p, path) {
			c.SearchPaths = append(c.SearchPaths[:i], c.SearchPaths[i+1:]...)
			return true
		}
	}
	return false
}

// HasSearchPath checks if a path exists in search paths
func (c *Config) HasSearchPath(path string) bool {
	path = filepath.Clean(expandHome(path))

	for _, p := range c.SearchPaths {
		if strings.EqualFold(p, path) {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
