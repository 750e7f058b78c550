// goldiscan finds companies in the i18n Goldilocks Zone: localization
// infrastructure installed, no translations shipped. It mines public GitHub
// activity for intent signals and ranks organizations into lead tiers.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingohawk/goldiscan/internal/config"
	"github.com/lingohawk/goldiscan/internal/storage/sqlite"
)

var (
	flagConfig          string
	flagDB              string
	flagMaxRepos        int
	flagCommitsPerRepo  int
	flagPRLookbackDays  int
	flagGreenfieldStars int
	flagTimeout         time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "goldiscan",
	Short: "GitHub signal scanner for i18n buying intent",
	Long: `goldiscan scans GitHub organizations for localization buying intent.

It discovers an organization's repositories, ranks them, and runs a deep
scan over the top candidates: dependency manifests, locale directories,
commit messages, branches, and pull requests. Detected signals feed a
Bayesian scorer that assigns each organization a phase, an intent
probability, and a lead tier.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "goldiscan.yml", "config file path")
	flags.StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	flags.IntVar(&flagMaxRepos, "max-repos", 0, "repositories to deep-scan per org (overrides config)")
	flags.IntVar(&flagCommitsPerRepo, "commits-per-repo", 0, "commit window per repository (overrides config)")
	flags.IntVar(&flagPRLookbackDays, "pr-lookback-days", 0, "pull-request lookback window (overrides config)")
	flags.IntVar(&flagGreenfieldStars, "greenfield-stars", 0, "greenfield star threshold (overrides config)")
	flags.DurationVar(&flagTimeout, "timeout", 0, "per-organization scan timeout (overrides config)")
}

// loadConfig merges the config file, environment, and command-line flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}
	if flagMaxRepos > 0 {
		cfg.MaxRepositories = flagMaxRepos
	}
	if flagCommitsPerRepo > 0 {
		cfg.CommitsPerRepo = flagCommitsPerRepo
	}
	if flagPRLookbackDays > 0 {
		cfg.PRLookbackDays = flagPRLookbackDays
	}
	if flagGreenfieldStars > 0 {
		cfg.GreenfieldStarThreshold = flagGreenfieldStars
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	return cfg, cfg.Validate()
}

func openStore(cfg config.Config) (*sqlite.Store, error) {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}
	return store, nil
}
