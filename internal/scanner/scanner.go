// Package scanner walks a bounded set of repositories for i18n evidence and
// streams typed signals as it finds them. The output is a lazy, single-pass,
// non-restartable event sequence: consumers can forward progress before the
// scan finishes, and cancellation between steps leaves the partial session
// valid and scorable.
package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/lingohawk/goldiscan/internal/discovery"
	"github.com/lingohawk/goldiscan/internal/events"
	"github.com/lingohawk/goldiscan/internal/gh"
	"github.com/lingohawk/goldiscan/internal/phase"
	"github.com/lingohawk/goldiscan/internal/scoring"
	"github.com/lingohawk/goldiscan/internal/signal"
)

// Options bound a scan. Zero values take defaults.
type Options struct {
	MaxRepositories         int
	CommitsPerRepo          int
	PRLookbackDays          int
	GreenfieldStarThreshold int
}

// DefaultOptions mirrors the production scan bounds: a handful of top-ranked
// repositories scanned deeply beats many scanned shallowly under a shared
// rate budget.
func DefaultOptions() Options {
	return Options{
		MaxRepositories:         5,
		CommitsPerRepo:          30,
		PRLookbackDays:          180,
		GreenfieldStarThreshold: 500,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxRepositories <= 0 {
		o.MaxRepositories = def.MaxRepositories
	}
	if o.CommitsPerRepo <= 0 {
		o.CommitsPerRepo = def.CommitsPerRepo
	}
	if o.PRLookbackDays <= 0 {
		o.PRLookbackDays = def.PRLookbackDays
	}
	if o.GreenfieldStarThreshold <= 0 {
		o.GreenfieldStarThreshold = def.GreenfieldStarThreshold
	}
	return o
}

// RepoScanError wraps a per-repository failure. It is logged and the
// repository skipped; it never aborts the session.
type RepoScanError struct {
	Repo string
	Err  error
}

func (e *RepoScanError) Error() string {
	return fmt.Sprintf("scanning %s: %v", e.Repo, e.Err)
}

func (e *RepoScanError) Unwrap() error { return e.Err }

// Scanner runs deep signal scans against the GitHub API.
type Scanner struct {
	client *gh.Client
	rules  Rules
}

// New creates a scanner with the given client and detection rules.
func New(client *gh.Client, rules Rules) *Scanner {
	return &Scanner{client: client, rules: rules}
}

// Run is a live scan: a forward-only event stream plus the finalized result
// once the stream terminates.
type Run struct {
	session *signal.ScanSession
	score   *signal.ScoreResult
	err     error
	events  chan events.Event
	done    chan struct{}
}

// Events returns the progress stream. It is closed after the terminal
// session_complete or session_failed event. The caller must drain it (or
// cancel the scan context) or the scan will stall.
func (r *Run) Events() <-chan events.Event {
	return r.events
}

// Result blocks until the scan terminates and returns the session, its
// score, and the fatal error if the session failed before any repository
// completed.
func (r *Run) Result() (*signal.ScanSession, *signal.ScoreResult, error) {
	<-r.done
	return r.session, r.score, r.err
}

// Start launches a scan of the given repository descriptors. Scanning is
// single-flow per organization: repositories proceed sequentially because
// the shared resource under protection is the rate budget itself.
func (s *Scanner) Start(ctx context.Context, org *gh.Organization, repos []discovery.Descriptor, opts Options) *Run {
	opts = opts.withDefaults()
	run := &Run{
		session: signal.NewSession(orgDisplayName(org), org.Login),
		events:  make(chan events.Event, 64),
		done:    make(chan struct{}),
	}
	go s.scan(ctx, run, repos, opts)
	return run
}

func (s *Scanner) scan(ctx context.Context, run *Run, repos []discovery.Descriptor, opts Options) {
	defer close(run.done)
	defer close(run.events)

	session := run.session
	if len(repos) > opts.MaxRepositories {
		repos = repos[:opts.MaxRepositories]
	}
	s.logf(ctx, run, events.SeverityInfo, "scanning %d repositories for %s", len(repos), session.OrgLogin)

	truncated := false
	for _, repo := range repos {
		if ctx.Err() != nil {
			truncated = true
			session.Logf(signal.LogWarn, "scan cancelled before %s", repo.Name)
			break
		}
		completed, err := s.scanRepository(ctx, run, repo, opts)
		if err != nil {
			// Budget or deadline exhaustion: stop here with what we have.
			truncated = true
			session.Logf(signal.LogWarn, "scan truncated at %s: %v", repo.Name, err)
			s.logf(ctx, run, events.SeverityWarning, "budget exhausted, truncating scan at %s", repo.Name)
			if completed {
				session.RepositoriesScanned = append(session.RepositoriesScanned, repo.Name)
			}
			break
		}
		if completed {
			session.RepositoriesScanned = append(session.RepositoriesScanned, repo.Name)
		}
	}

	session.Finalize(truncated)
	if session.Status == signal.StatusFailed {
		run.err = fmt.Errorf("scan of %s failed before any repository completed", session.OrgLogin)
		s.send(ctx, run, events.NewSessionFailed(session, run.err.Error()))
		return
	}

	ph := phase.Classify(session.Signals)
	s.send(ctx, run, events.NewPhaseAssigned(session.ID, ph))

	score := scoring.Score(session)
	run.score = &score
	s.send(ctx, run, events.NewScoreComputed(session.ID, score))
	s.send(ctx, run, events.NewSessionComplete(session, &score))
}

// scanRepository runs the six detection steps in order. The bool return
// reports whether the repository counts as completed; the error return is
// reserved for budget-class failures that must truncate the whole session.
// Any other failure marks the repository skipped and the session continues.
func (s *Scanner) scanRepository(ctx context.Context, run *Run, repo discovery.Descriptor, opts Options) (bool, error) {
	session := run.session
	owner := session.OrgLogin
	signalsBefore := len(session.Signals)
	s.logf(ctx, run, events.SeverityInfo, "scanning %s (%d stars)", repo.FullName, repo.Stars)

	skip := func(step string, err error) (bool, error) {
		if isBudgetError(err) {
			return false, err
		}
		scanErr := &RepoScanError{Repo: repo.Name, Err: fmt.Errorf("%s: %w", step, err)}
		session.SkippedRepositories = append(session.SkippedRepositories, repo.Name)
		session.Logf(signal.LogError, "%v", scanErr)
		s.logf(ctx, run, events.SeverityWarning, "skipping %s: %s step failed", repo.Name, step)
		return false, nil
	}

	// Step 1: manifest scan. Dependency candidates stay pending until the
	// locale probe rules on them; competitor configs emit immediately.
	candidates, extras, err := s.scanManifests(ctx, owner, repo.Name)
	if err != nil {
		return skip("manifest", err)
	}
	for _, sig := range extras {
		s.emit(ctx, run, sig)
	}

	// Step 2: locale probe. Real translated content overrides every pending
	// dependency candidate for this repository; platform resource layouts
	// without translations join the candidate pool instead.
	inventory, extraCandidates, err := s.probeLocales(ctx, owner, repo.Name)
	if err != nil {
		return skip("locale-probe", err)
	}
	candidates = append(candidates, extraCandidates...)
	if len(inventory) > 0 {
		for _, sig := range inventory {
			s.emit(ctx, run, sig)
		}
		session.Logf(signal.LogInfo, "%s: locale inventory found, dependency candidates discarded", repo.Name)
	} else {
		for _, sig := range candidates {
			s.emit(ctx, run, sig)
		}
	}

	// Step 3: commit-message scan.
	frustrations, analyzed, err := s.scanCommits(ctx, owner, repo.Name, repo.DefaultBranch, opts.CommitsPerRepo)
	if err != nil {
		return skip("commits", err)
	}
	session.CommitsAnalyzed += analyzed
	for _, sig := range frustrations {
		s.emit(ctx, run, sig)
	}

	// Step 4: branch scan.
	ghosts, err := s.scanBranches(ctx, owner, repo.Name, repo.DefaultBranch)
	if err != nil {
		return skip("branches", err)
	}
	for _, sig := range ghosts {
		s.emit(ctx, run, sig)
	}

	// Step 5: pull-request scan.
	prSignals, prsAnalyzed, err := s.scanPulls(ctx, owner, repo.Name, opts.PRLookbackDays)
	if err != nil {
		return skip("pulls", err)
	}
	session.PRsAnalyzed += prsAnalyzed
	for _, sig := range prSignals {
		s.emit(ctx, run, sig)
	}

	// Step 6: greenfield check. A repository large enough to matter with no
	// localization activity at all is itself informative.
	if repo.Stars >= opts.GreenfieldStarThreshold && len(session.Signals) == signalsBefore {
		s.emit(ctx, run, signal.Signal{
			Type:         signal.TypeGreenfieldOpportunity,
			Repository:   repo.Name,
			Ref:          repo.FullName,
			Significance: signal.SignificanceMedium,
			DetectedAt:   nowUTC(),
			Excerpt:      signal.Excerpt(fmt.Sprintf("%d stars, no i18n activity detected", repo.Stars)),
		})
	}

	return true, nil
}

// emit appends a signal to the session and forwards it on the stream.
// Signals already emitted remain valid evidence even if the consumer has
// gone away.
func (s *Scanner) emit(ctx context.Context, run *Run, sig signal.Signal) {
	run.session.AddSignal(sig)
	s.send(ctx, run, events.NewSignalFound(run.session.ID, sig))
}

func (s *Scanner) logf(ctx context.Context, run *Run, severity events.Severity, format string, args ...interface{}) {
	s.send(ctx, run, events.NewLog(run.session.ID, severity, fmt.Sprintf(format, args...)))
}

func (s *Scanner) send(ctx context.Context, run *Run, ev events.Event) {
	select {
	case run.events <- ev:
	case <-ctx.Done():
	}
}

func isBudgetError(err error) bool {
	var rateErr *gh.RateLimitError
	return errors.Is(err, gh.ErrBudgetExhausted) ||
		errors.As(err, &rateErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

func orgDisplayName(org *gh.Organization) string {
	if org.Name != "" {
		return org.Name
	}
	return org.Login
}
