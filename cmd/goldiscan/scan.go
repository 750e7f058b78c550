package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lingohawk/goldiscan/internal/config"
	"github.com/lingohawk/goldiscan/internal/discovery"
	"github.com/lingohawk/goldiscan/internal/events"
	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/scanner"
	"github.com/lingohawk/goldiscan/internal/signal"
	"github.com/lingohawk/goldiscan/internal/storage"
)

var scanJSON bool

var scanCmd = &cobra.Command{
	Use:   "scan <organization> [organization...]",
	Short: "Scan GitHub organizations for i18n buying-intent signals",
	Long: `Scan one or more GitHub organizations for i18n buying-intent signals.

For each organization, goldiscan resolves the GitHub org (trying common
login variants and falling back to search), ranks its active repositories,
and deep-scans the top candidates. Signals stream to the terminal as they
are found; the final score and tier print when the scan completes.

Results persist to the SQLite database for later reporting.

Examples:
  goldiscan scan stripe                    # Scan one organization
  goldiscan scan stripe plaid brex         # Scan several concurrently
  goldiscan scan stripe --json             # Emit the raw event stream
  goldiscan scan stripe --max-repos=10     # Deep-scan more repositories`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		store, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := runScans(context.Background(), cfg, store, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit the raw JSON event stream instead of formatted output")
	rootCmd.AddCommand(scanCmd)
}

// runScans fans out across organizations under a concurrency bound. Output
// is serialized so concurrent scans do not interleave lines.
func runScans(ctx context.Context, cfg config.Config, store storage.ResultStore, orgs []string) error {
	client, err := gh.NewClient(gh.Config{
		BaseURL: cfg.APIBaseURL,
		Tokens:  cfg.Tokens,
	})
	if err != nil {
		return err
	}

	var outMu sync.Mutex
	sem := semaphore.NewWeighted(int64(cfg.ConcurrentScans))

	// One organization failing (a typo'd name, a rate-limited discovery) must
	// not cancel its siblings, so the group carries no derived context.
	var group errgroup.Group
	for _, org := range orgs {
		org := org
		group.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return scanOrganization(ctx, cfg, client, store, org, &outMu)
		})
	}
	return group.Wait()
}

func scanOrganization(ctx context.Context, cfg config.Config, client *gh.Client, store storage.ResultStore, orgName string, outMu *sync.Mutex) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	org, err := discovery.FindOrganization(ctx, client, orgName)
	if err != nil {
		return fmt.Errorf("%s: %w", orgName, err)
	}

	discoveryCfg := discovery.DefaultConfig()
	discoveryCfg.InactivityDays = cfg.InactivityDays
	repos, err := discovery.ListRepositories(ctx, client, org.Login, discoveryCfg)
	if err != nil && !errors.Is(err, discovery.ErrOrganizationEmpty) {
		return fmt.Errorf("%s: %w", orgName, err)
	}
	// An empty org still scores: zero repositories, zero signals.

	run := scanner.New(client, scanner.DefaultRules()).Start(ctx, org, repos, scanner.Options{
		MaxRepositories:         cfg.MaxRepositories,
		CommitsPerRepo:          cfg.CommitsPerRepo,
		PRLookbackDays:          cfg.PRLookbackDays,
		GreenfieldStarThreshold: cfg.GreenfieldStarThreshold,
	})

	for ev := range run.Events() {
		outMu.Lock()
		printEvent(org.Login, ev)
		outMu.Unlock()
	}

	session, score, scanErr := run.Result()
	if err := store.SaveSession(context.WithoutCancel(ctx), session, score); err != nil {
		return fmt.Errorf("saving %s: %w", orgName, err)
	}
	return scanErr
}

func printEvent(org string, ev events.Event) {
	if scanJSON {
		data, err := json.Marshal(ev)
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}

	dim := color.New(color.Faint).SprintFunc()
	switch ev.Type {
	case events.TypeLog:
		if ev.Severity == events.SeverityWarning || ev.Severity == events.SeverityError {
			color.Yellow("[%s] %s", org, ev.Message)
		} else {
			fmt.Printf("%s %s\n", dim("["+org+"]"), dim(ev.Message))
		}
	case events.TypeSignalFound:
		sig := ev.Signal
		fmt.Printf("[%s] %s %s %s %s\n", org,
			significanceColor(sig.Significance)(string(sig.Type)),
			sig.Repository, dim(sig.Ref), dim(sig.Excerpt))
	case events.TypePhaseAssigned:
		fmt.Printf("[%s] phase: %s\n", org, color.CyanString(ev.Phase.String()))
	case events.TypeScoreComputed:
		score := ev.Score
		fmt.Printf("[%s] score: p=%.3f tier=%s confidence=%s readiness=%.2f\n",
			org, score.PIntent, tierColor(score.Tier)(string(score.Tier)),
			score.Confidence, score.Readiness.Index)
	case events.TypeSessionComplete:
		printSummary(org, ev.Session, ev.Score)
	case events.TypeSessionFailed:
		color.Red("[%s] scan failed: %s", org, ev.Message)
	}
}

func printSummary(org string, session *signal.ScanSession, score *signal.ScoreResult) {
	fmt.Println()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s %s\n", bold(org), statusSuffix(session))
	fmt.Printf("  repositories: %d scanned, %d skipped\n",
		len(session.RepositoriesScanned), len(session.SkippedRepositories))
	fmt.Printf("  analyzed: %d commits, %d pull requests\n",
		session.CommitsAnalyzed, session.PRsAnalyzed)
	fmt.Printf("  signals: %d\n", len(session.Signals))
	if score != nil {
		fmt.Printf("  %s  p=%.3f  phase=%s  confidence=%s  readiness=%.2f\n",
			tierColor(score.Tier)(string(score.Tier)), score.PIntent,
			score.Phase, score.Confidence, score.Readiness.Index)
	}
	fmt.Printf("  session: %s\n", session.ID)
	fmt.Println()
}

func statusSuffix(session *signal.ScanSession) string {
	if session.Truncated {
		return color.YellowString("(truncated)")
	}
	return ""
}

func significanceColor(s signal.Significance) func(a ...interface{}) string {
	switch s {
	case signal.SignificanceCritical:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case signal.SignificanceHigh:
		return color.New(color.FgRed).SprintFunc()
	case signal.SignificanceMedium:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgWhite).SprintFunc()
	}
}

func tierColor(t signal.Tier) func(a ...interface{}) string {
	switch t {
	case signal.TierHotLead:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case signal.TierWarmLead:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case signal.TierMonitor:
		return color.New(color.FgCyan).SprintFunc()
	case signal.TierCold:
		return color.New(color.FgBlue).SprintFunc()
	default:
		return color.New(color.Faint).SprintFunc()
	}
}
