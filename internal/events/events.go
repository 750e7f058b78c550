// Package events defines the typed progress stream a scan emits. Consumers
// (the CLI, a streaming transport, a persistence hook) receive each event as
// it happens instead of waiting for the scan to finish.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/lingohawk/goldiscan/internal/signal"
)

// Type enumerates the scan progress events.
type Type string

const (
	// TypeSignalFound carries one newly detected signal.
	TypeSignalFound Type = "signal_found"
	// TypeLog carries a human-readable progress line.
	TypeLog Type = "log"
	// TypePhaseAssigned reports the classifier's phase decision.
	TypePhaseAssigned Type = "phase_assigned"
	// TypeScoreComputed reports the scoring engine's result.
	TypeScoreComputed Type = "score_computed"
	// TypeSessionComplete terminates the stream with the finished session.
	TypeSessionComplete Type = "session_complete"
	// TypeSessionFailed terminates the stream when no repository completed.
	TypeSessionFailed Type = "session_failed"
)

// Severity grades log events.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event is one element of the progress stream. Exactly one of the payload
// fields is set, matching the Type. JSON-serializable so outer transports
// can forward it unchanged.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Severity  Severity  `json:"severity,omitempty"`
	Message   string    `json:"message,omitempty"`

	Signal  *signal.Signal      `json:"signal,omitempty"`
	Phase   *signal.Phase       `json:"phase,omitempty"`
	Score   *signal.ScoreResult `json:"score,omitempty"`
	Session *signal.ScanSession `json:"session,omitempty"`
}

// Terminal reports whether this event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == TypeSessionComplete || e.Type == TypeSessionFailed
}

// NewSignalFound creates a signal_found event.
func NewSignalFound(sessionID string, sig signal.Signal) Event {
	s := sig
	return Event{
		ID:        uuid.New().String(),
		Type:      TypeSignalFound,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Severity:  SeverityInfo,
		Message:   string(sig.Type) + " in " + sig.Repository,
		Signal:    &s,
	}
}

// NewLog creates a log event.
func NewLog(sessionID string, severity Severity, message string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      TypeLog,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Severity:  severity,
		Message:   message,
	}
}

// NewPhaseAssigned creates a phase_assigned event.
func NewPhaseAssigned(sessionID string, ph signal.Phase) Event {
	p := ph
	return Event{
		ID:        uuid.New().String(),
		Type:      TypePhaseAssigned,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Severity:  SeverityInfo,
		Message:   "phase " + ph.String(),
		Phase:     &p,
	}
}

// NewScoreComputed creates a score_computed event.
func NewScoreComputed(sessionID string, score signal.ScoreResult) Event {
	s := score
	return Event{
		ID:        uuid.New().String(),
		Type:      TypeScoreComputed,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Severity:  SeverityInfo,
		Message:   string(score.Tier),
		Score:     &s,
	}
}

// NewSessionComplete creates the terminal success event.
func NewSessionComplete(session *signal.ScanSession, score *signal.ScoreResult) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      TypeSessionComplete,
		Timestamp: time.Now().UTC(),
		SessionID: session.ID,
		Severity:  SeverityInfo,
		Message:   "scan complete",
		Session:   session,
		Score:     score,
	}
}

// NewSessionFailed creates the terminal failure event.
func NewSessionFailed(session *signal.ScanSession, message string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      TypeSessionFailed,
		Timestamp: time.Now().UTC(),
		SessionID: session.ID,
		Severity:  SeverityError,
		Message:   message,
		Session:   session,
	}
}
