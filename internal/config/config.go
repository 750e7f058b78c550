// Package config loads engine configuration from an optional YAML file, a
// .env file, and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every knob the engine exposes.
type Config struct {
	// Tokens are GitHub API tokens pooled for budget rotation.
	// Scanning works unauthenticated but the 60-requests/hour anonymous
	// budget barely covers one repository.
	Tokens []string `yaml:"tokens"`

	// APIBaseURL overrides the GitHub API endpoint. Used for GitHub
	// Enterprise and for tests.
	// Default: https://api.github.com
	APIBaseURL string `yaml:"api_base_url"`

	// DatabasePath is the SQLite file scan results persist to.
	// Default: goldiscan.db
	DatabasePath string `yaml:"database_path"`

	// MaxRepositories caps how many top-ranked repositories get the deep
	// scan per organization.
	// Default: 5, Range: 1-50
	MaxRepositories int `yaml:"max_repositories"`

	// CommitsPerRepo bounds the commit-message window per repository.
	// Default: 30, Range: 1-100
	CommitsPerRepo int `yaml:"commits_per_repo"`

	// PRLookbackDays bounds how far back the pull-request scan reaches.
	// Default: 180, Range: 1-730
	PRLookbackDays int `yaml:"pr_lookback_days"`

	// GreenfieldStarThreshold is the minimum star count for a signal-free
	// repository to count as a greenfield opportunity.
	// Default: 500
	GreenfieldStarThreshold int `yaml:"greenfield_star_threshold"`

	// InactivityDays excludes repositories not pushed to within the window.
	// Default: 730 (two years)
	InactivityDays int `yaml:"inactivity_days"`

	// ConcurrentScans bounds how many organizations scan in parallel.
	// Each scan is internally sequential; this only fans out across orgs.
	// Default: 3, Range: 1-10
	ConcurrentScans int `yaml:"concurrent_scans"`

	// Timeout bounds a whole organization scan.
	// Default: 10m
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the production defaults.
func Default() Config {
	return Config{
		APIBaseURL:              "https://api.github.com",
		DatabasePath:            "goldiscan.db",
		MaxRepositories:         5,
		CommitsPerRepo:          30,
		PRLookbackDays:          180,
		GreenfieldStarThreshold: 500,
		InactivityDays:          730,
		ConcurrentScans:         3,
		Timeout:                 10 * time.Minute,
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if it exists), then .env, then process environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// Missing .env is the normal case.
	_ = godotenv.Load()

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.Tokens = append(c.Tokens, v)
	}
	if v := os.Getenv("GITHUB_TOKENS"); v != "" {
		for _, tok := range strings.Split(v, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				c.Tokens = append(c.Tokens, tok)
			}
		}
	}
	c.Tokens = dedupe(c.Tokens)

	if v := os.Getenv("GOLDISCAN_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("GOLDISCAN_DB"); v != "" {
		c.DatabasePath = v
	}
	setIntEnv("GOLDISCAN_MAX_REPOS", &c.MaxRepositories)
	setIntEnv("GOLDISCAN_COMMITS_PER_REPO", &c.CommitsPerRepo)
	setIntEnv("GOLDISCAN_PR_LOOKBACK_DAYS", &c.PRLookbackDays)
	setIntEnv("GOLDISCAN_GREENFIELD_STARS", &c.GreenfieldStarThreshold)
	setIntEnv("GOLDISCAN_INACTIVITY_DAYS", &c.InactivityDays)
	setIntEnv("GOLDISCAN_CONCURRENT_SCANS", &c.ConcurrentScans)
	if v := os.Getenv("GOLDISCAN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// Validate rejects out-of-range values rather than clamping them, so a typo
// in an env var fails loudly instead of silently scanning the wrong amount.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.MaxRepositories < 1 || c.MaxRepositories > 50 {
		return fmt.Errorf("max_repositories %d out of range 1-50", c.MaxRepositories)
	}
	if c.CommitsPerRepo < 1 || c.CommitsPerRepo > 100 {
		return fmt.Errorf("commits_per_repo %d out of range 1-100", c.CommitsPerRepo)
	}
	if c.PRLookbackDays < 1 || c.PRLookbackDays > 730 {
		return fmt.Errorf("pr_lookback_days %d out of range 1-730", c.PRLookbackDays)
	}
	if c.InactivityDays < 1 {
		return fmt.Errorf("inactivity_days must be positive")
	}
	if c.ConcurrentScans < 1 || c.ConcurrentScans > 10 {
		return fmt.Errorf("concurrent_scans %d out of range 1-10", c.ConcurrentScans)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func setIntEnv(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
