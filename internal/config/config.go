package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDirName is the data directory created under the user's home.
const DefaultDirName = ".adminconsole"

// Config holds all admin console configuration.
type Config struct {
	// DataDir holds the session file and logs.
	DataDir string `yaml:"data_dir"`

	// Remote API
	API APIConfig `yaml:"api"`

	// Users screen
	Users UsersConfig `yaml:"users"`

	// Session persistence
	Session SessionConfig `yaml:"session"`

	// Interactive console
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the remote user-management API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// UsersConfig configures the users list.
type UsersConfig struct {
	PageSize int `yaml:"page_size"`
}

// SessionConfig configures where the session token is kept.
type SessionConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"` // reload when another process logs in or out
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := defaultDataDir()
	return &Config{
		DataDir: dir,
		API: APIConfig{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: "15s",
		},
		Users: UsersConfig{
			PageSize: 15,
		},
		Session: SessionConfig{
			File:  filepath.Join(dir, "session.yaml"),
			Watch: true,
		},
		UI: UIConfig{
			Theme: ThemeAuto,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// DefaultPath returns the config file path inside the default data directory.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ADMIN_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ADMIN_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("ADMIN_SESSION_FILE"); v != "" {
		c.Session.File = v
	}
	if v := os.Getenv("ADMIN_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// GetAPITimeout returns the API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// LogsDir returns the directory log files are written to.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q (must be an http or https URL)", c.API.BaseURL)
	}
	if c.API.Timeout != "" {
		if _, err := time.ParseDuration(c.API.Timeout); err != nil {
			return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
		}
	}
	if c.Users.PageSize <= 0 {
		return fmt.Errorf("users.page_size must be positive, got %d", c.Users.PageSize)
	}
	if c.Session.File == "" {
		return fmt.Errorf("session.file must be set")
	}
	if !c.UI.Theme.Valid() {
		return fmt.Errorf("invalid ui.theme %q (valid: %v)", c.UI.Theme, ValidThemes)
	}
	return nil
}
