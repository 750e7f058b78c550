package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingohawk/goldiscan/internal/scoring"
	"github.com/lingohawk/goldiscan/internal/signal"
	"github.com/lingohawk/goldiscan/internal/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(org string) (*signal.ScanSession, *signal.ScoreResult) {
	session := signal.NewSession(org, org)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session.AddSignal(signal.Signal{
		Type:         signal.TypeDependencyInjection,
		Repository:   "web",
		Ref:          "package.json",
		Significance: signal.SignificanceHigh,
		DetectedAt:   base,
		Libraries:    []string{"i18next"},
		Excerpt:      "package.json declares i18next",
	})
	session.AddSignal(signal.Signal{
		Type:         signal.TypeGhostBranch,
		Repository:   "web",
		Ref:          "feature/i18n",
		Significance: signal.SignificanceHigh,
		DetectedAt:   base.Add(time.Minute),
		Pattern:      "feature/i18n",
	})
	session.RepositoriesScanned = []string{"web"}
	session.SkippedRepositories = []string{"broken"}
	session.CommitsAnalyzed = 30
	session.PRsAnalyzed = 4
	session.Logf(signal.LogWarn, "skipping broken: boom")
	session.Finalize(false)

	score := scoring.Score(session)
	return session, &score
}

func TestSaveAndGetSession(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	session, score := sampleSession("acme")

	require.NoError(t, store.SaveSession(ctx, session, score))

	loaded, loadedScore, err := store.GetSession(ctx, uuid.MustParse(session.ID))
	require.NoError(t, err)

	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Organization, loaded.Organization)
	assert.Equal(t, session.Status, loaded.Status)
	assert.Equal(t, session.RepositoriesScanned, loaded.RepositoriesScanned)
	assert.Equal(t, session.SkippedRepositories, loaded.SkippedRepositories)
	assert.Equal(t, session.CommitsAnalyzed, loaded.CommitsAnalyzed)
	assert.Equal(t, session.PRsAnalyzed, loaded.PRsAnalyzed)
	require.Len(t, loaded.Log, 1)
	assert.Equal(t, "skipping broken: boom", loaded.Log[0].Message)

	// Signals come back in insertion order with match details intact.
	require.Len(t, loaded.Signals, 2)
	assert.Equal(t, signal.TypeDependencyInjection, loaded.Signals[0].Type)
	assert.Equal(t, []string{"i18next"}, loaded.Signals[0].Libraries)
	assert.Equal(t, signal.TypeGhostBranch, loaded.Signals[1].Type)
	assert.Equal(t, "feature/i18n", loaded.Signals[1].Pattern)
	assert.True(t, loaded.Signals[0].DetectedAt.Before(loaded.Signals[1].DetectedAt))

	require.NotNil(t, loadedScore)
	assert.Equal(t, score.Tier, loadedScore.Tier)
	assert.InDelta(t, score.PIntent, loadedScore.PIntent, 1e-9)
	assert.Equal(t, score.Phase, loadedScore.Phase)
}

func TestGetSessionNotFound(t *testing.T) {
	store := newStore(t)
	_, _, err := store.GetSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSaveSessionWithoutScore(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	session := signal.NewSession("acme", "acme")
	session.Finalize(true) // failed: nothing completed

	require.NoError(t, store.SaveSession(ctx, session, nil))

	loaded, score, err := store.GetSession(ctx, uuid.MustParse(session.ID))
	require.NoError(t, err)
	assert.Nil(t, score)
	assert.Equal(t, signal.StatusFailed, loaded.Status)
}

func TestSaveSessionReplaces(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	session, score := sampleSession("acme")
	require.NoError(t, store.SaveSession(ctx, session, score))

	session.AddSignal(signal.Signal{
		Type: signal.TypeFrustration, Repository: "web",
		Significance: signal.SignificanceLow, DetectedAt: time.Now().UTC(),
	})
	require.NoError(t, store.SaveSession(ctx, session, score))

	loaded, _, err := store.GetSession(ctx, uuid.MustParse(session.ID))
	require.NoError(t, err)
	assert.Len(t, loaded.Signals, 3, "re-saving must replace, not append")
}

func TestListSessions(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, firstScore := sampleSession("acme")
	first.StartedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSession(ctx, first, firstScore))

	second, secondScore := sampleSession("globex")
	second.StartedAt = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSession(ctx, second, secondScore))

	sessions, err := store.ListSessions(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Newest first.
	assert.Equal(t, "globex", sessions[0].OrgLogin)
	assert.Equal(t, "acme", sessions[1].OrgLogin)
	assert.Equal(t, secondScore.Tier, sessions[0].Tier)
	assert.InDelta(t, secondScore.PIntent, sessions[0].PIntent, 1e-9)
	assert.Equal(t, 2, sessions[0].SignalCount)

	limited, err := store.ListSessions(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	filtered, err := store.ListSessions(ctx, "acme", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "acme", filtered[0].OrgLogin)
}
