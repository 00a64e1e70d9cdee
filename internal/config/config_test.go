package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.Users.PageSize)
	assert.Equal(t, 15*time.Second, cfg.GetAPITimeout())
	assert.Equal(t, filepath.Join(cfg.DataDir, "session.yaml"), cfg.Session.File)
	assert.False(t, cfg.Logging.DebugMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().API, cfg.API)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://admin.example.com/api"
	cfg.Users.PageSize = 50
	cfg.UI.Theme = ThemeDark
	cfg.Logging.Categories = map[string]bool{"api": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com/api", loaded.API.BaseURL)
	assert.Equal(t, 50, loaded.Users.PageSize)
	assert.Equal(t, ThemeDark, loaded.UI.Theme)
	assert.Equal(t, map[string]bool{"api": false}, loaded.Logging.Categories)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  page_size: 5\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Users.PageSize)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_API_URL", "https://env.example.com/v2")
	t.Setenv("ADMIN_API_TIMEOUT", "3s")
	t.Setenv("ADMIN_SESSION_FILE", "/tmp/admin-session.yaml")
	t.Setenv("ADMIN_DEBUG", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/v2", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.GetAPITimeout())
	assert.Equal(t, "/tmp/admin-session.yaml", cfg.Session.File)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrideBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://file.example.com\n"), 0644))
	t.Setenv("ADMIN_API_URL", "http://env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com", cfg.API.BaseURL)
}

func TestGetAPITimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "soon"
	assert.Equal(t, 15*time.Second, cfg.GetAPITimeout())

	cfg.API.Timeout = "-1s"
	assert.Equal(t, 15*time.Second, cfg.GetAPITimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://example.com" }},
		{"no host", func(c *Config) { c.API.BaseURL = "http://" }},
		{"bad timeout", func(c *Config) { c.API.Timeout = "forever" }},
		{"zero page size", func(c *Config) { c.Users.PageSize = 0 }},
		{"no session file", func(c *Config) { c.Session.File = "" }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("api"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("api"))

	lc.Categories = map[string]bool{"api": false}
	assert.False(t, lc.IsCategoryEnabled("api"))
	assert.True(t, lc.IsCategoryEnabled("store"))
}

func TestLoggingOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/admin"
	cfg.Logging.DebugMode = true
	cfg.Logging.Format = "json"

	o := cfg.LoggingOptions()
	assert.Equal(t, filepath.Join("/var/lib/admin", "logs"), o.Dir)
	assert.True(t, o.DebugMode)
	assert.Equal(t, "json", o.Format)
}
