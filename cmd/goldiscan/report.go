package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lingohawk/goldiscan/internal/signal"
	"github.com/lingohawk/goldiscan/internal/storage"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report [org|session-id]",
	Short: "Show stored scan results",
	Long: `Show stored scan results.

Without arguments, lists recent scan sessions newest first. With an
organization login, prints that org's most recent session in full: score
breakdown, contributing signals, and the scan log. A session ID selects one
specific session.

Examples:
  goldiscan report                         # Recent sessions
  goldiscan report --limit=100             # More of them
  goldiscan report acme                    # Latest scan of acme
  goldiscan report 6a1f...                 # One session by ID`,
	Args: cobra.MaximumNArgs(1),
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

		ctx := context.Background()
		if len(args) == 0 {
			err = listSessions(ctx, store, reportLimit)
		} else {
			err = showSession(ctx, store, args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 50, "maximum sessions to list")
	rootCmd.AddCommand(reportCmd)
}

func listSessions(ctx context.Context, store storage.ResultStore, limit int) error {
	sessions, err := store.ListSessions(ctx, "", limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No scan sessions stored yet. Run 'goldiscan scan <org>' first.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-12s  %-7s  %7s  %s\n",
		"SESSION", "ORGANIZATION", "TIER", "SIGNALS", "P", "WHEN")
	for _, s := range sessions {
		tier := string(s.Tier)
		if tier == "" {
			tier = "-"
		}
		fmt.Printf("%-36s  %-20s  %-12s  %-7d  %7.3f  %s\n",
			s.ID, s.OrgLogin, tierColor(s.Tier)(tier), s.SignalCount,
			s.PIntent, s.StartedAt.Local().Format(time.DateTime))
	}
	return nil
}

func showSession(ctx context.Context, store storage.ResultStore, arg string) error {
	id, err := uuid.Parse(arg)
	if err != nil {
		// Not a session ID: treat it as an org login and show the
		// latest scan.
		sessions, err := store.ListSessions(ctx, arg, 1)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return fmt.Errorf("no stored scans for %q", arg)
		}
		id = sessions[0].ID
	}
	session, score, err := store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Printf("%s (%s)\n", bold(session.Organization), session.OrgLogin)
	fmt.Printf("  status: %s%s\n", session.Status, truncatedSuffix(session))
	fmt.Printf("  scanned: %s\n", session.StartedAt.Local().Format(time.DateTime))
	fmt.Printf("  repositories: %d scanned, %d skipped\n",
		len(session.RepositoriesScanned), len(session.SkippedRepositories))
	fmt.Printf("  analyzed: %d commits, %d pull requests\n",
		session.CommitsAnalyzed, session.PRsAnalyzed)

	if score != nil {
		fmt.Println()
		fmt.Printf("  %s  p=%.3f  phase=%s  confidence=%s\n",
			tierColor(score.Tier)(string(score.Tier)), score.PIntent,
			score.Phase, score.Confidence)
		r := score.Readiness
		fmt.Printf("  readiness %.2f  (preparation=%.2f velocity=%.2f launch-gap=%.2f pain=%.2f)\n",
			r.Index, r.Preparation, r.Velocity, r.LaunchGap, r.PainIntensity)
		if len(score.ContributingSignals) > 0 {
			fmt.Println("\n  contributing signals:")
			for _, c := range score.ContributingSignals {
				fmt.Printf("    %+5.2f  %s %s %s\n", c.LogOdds,
					significanceColor(c.Signal.Significance)(string(c.Signal.Type)),
					c.Signal.Repository, dim(c.Signal.Excerpt))
			}
		}
	}

	if len(session.Signals) > 0 {
		fmt.Println("\n  all signals:")
		for _, sig := range session.Signals {
			fmt.Printf("    %s  %s %s %s\n",
				significanceColor(sig.Significance)(string(sig.Type)),
				sig.Repository, sig.Ref, dim(sig.Excerpt))
		}
	}

	if len(session.Log) > 0 {
		fmt.Println("\n  log:")
		for _, entry := range session.Log {
			fmt.Printf("    %s %s\n", dim(string(entry.Level)), entry.Message)
		}
	}
	return nil
}

func truncatedSuffix(session *signal.ScanSession) string {
	if session.Truncated {
		return color.YellowString(" (truncated)")
	}
	return ""
}
