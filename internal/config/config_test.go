package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api.github.com", cfg.APIBaseURL)
	assert.Equal(t, 5, cfg.MaxRepositories)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default().MaxRepositories, cfg.MaxRepositories)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goldiscan.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_repositories: 12
database_path: /tmp/leads.db
pr_lookback_days: 90
timeout: 5m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxRepositories)
	assert.Equal(t, "/tmp/leads.db", cfg.DatabasePath)
	assert.Equal(t, 90, cfg.PRLookbackDays)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().CommitsPerRepo, cfg.CommitsPerRepo)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok-a")
	t.Setenv("GITHUB_TOKENS", "tok-b, tok-a, tok-c")
	t.Setenv("GOLDISCAN_MAX_REPOS", "9")
	t.Setenv("GOLDISCAN_TIMEOUT", "90s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, cfg.Tokens)
	assert.Equal(t, 9, cfg.MaxRepositories)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("max_repositories: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max repositories too high", func(c *Config) { c.MaxRepositories = 51 }},
		{"max repositories zero", func(c *Config) { c.MaxRepositories = 0 }},
		{"commits out of range", func(c *Config) { c.CommitsPerRepo = 500 }},
		{"lookback out of range", func(c *Config) { c.PRLookbackDays = 1000 }},
		{"concurrency out of range", func(c *Config) { c.ConcurrentScans = 0 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"empty base url", func(c *Config) { c.APIBaseURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
