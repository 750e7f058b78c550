// Package storage defines the persistence boundary for scan results. The
// engine talks to ResultStore only; the SQLite implementation lives in the
// sqlite subpackage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lingohawk/goldiscan/internal/signal"
)

// ErrSessionNotFound is returned by GetSession for unknown IDs.
var ErrSessionNotFound = errors.New("scan session not found")

// SessionSummary is the listing row: enough to render a leads table without
// loading full sessions.
type SessionSummary struct {
	ID           uuid.UUID            `json:"id"`
	Organization string               `json:"organization"`
	OrgLogin     string               `json:"org_login"`
	Status       signal.SessionStatus `json:"status"`
	Tier         signal.Tier          `json:"tier"`
	PIntent      float64              `json:"p_intent"`
	SignalCount  int                  `json:"signal_count"`
	StartedAt    time.Time            `json:"started_at"`
	CompletedAt  time.Time            `json:"completed_at"`
}

// ResultStore persists finished scan sessions and their scores.
type ResultStore interface {
	// SaveSession stores a finalized session. score may be nil for failed
	// sessions. Saving the same session ID again replaces the stored copy.
	SaveSession(ctx context.Context, session *signal.ScanSession, score *signal.ScoreResult) error

	// GetSession loads a stored session and its score. The score is nil
	// when none was stored. Signals come back in insertion order.
	GetSession(ctx context.Context, id uuid.UUID) (*signal.ScanSession, *signal.ScoreResult, error)

	// ListSessions returns the most recent sessions, newest first. A
	// non-empty org restricts the listing to that organization login.
	ListSessions(ctx context.Context, org string, limit int) ([]SessionSummary, error)

	Close() error
}
