package signal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the lifecycle of a scan session.
type SessionStatus string

const (
	StatusRunning  SessionStatus = "running"
	StatusComplete SessionStatus = "complete"
	StatusFailed   SessionStatus = "failed"
)

// LogLevel grades session log entries.
type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// LogEntry is one line of the session's audit log. All non-fatal scan
// errors land here rather than being raised past the scan boundary.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   LogLevel  `json:"level"`
	Message string    `json:"message"`
}

// ScanSession is one organization's scan run. It is owned exclusively by the
// scan invocation; persistence of a finished session is the caller's concern.
type ScanSession struct {
	ID                  string        `json:"id"`
	Organization        string        `json:"organization"`
	OrgLogin            string        `json:"org_login"`
	RepositoriesScanned []string      `json:"repositories_scanned"`
	SkippedRepositories []string      `json:"skipped_repositories,omitempty"`
	Signals             []Signal      `json:"signals"`
	CommitsAnalyzed     int           `json:"commits_analyzed"`
	PRsAnalyzed         int           `json:"prs_analyzed"`
	StartedAt           time.Time     `json:"started_at"`
	CompletedAt         time.Time     `json:"completed_at"`
	Status              SessionStatus `json:"status"`
	Truncated           bool          `json:"truncated"`
	Log                 []LogEntry    `json:"log,omitempty"`
}

// NewSession creates a running session for an organization.
func NewSession(organization, orgLogin string) *ScanSession {
	return &ScanSession{
		ID:           uuid.New().String(),
		Organization: organization,
		OrgLogin:     orgLogin,
		StartedAt:    time.Now().UTC(),
		Status:       StatusRunning,
	}
}

// AddSignal appends a signal, preserving insertion order for audit.
func (s *ScanSession) AddSignal(sig Signal) {
	s.Signals = append(s.Signals, sig)
}

// Logf appends a formatted entry to the session log.
func (s *ScanSession) Logf(level LogLevel, format string, args ...interface{}) {
	s.Log = append(s.Log, LogEntry{
		Time:    time.Now().UTC(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// CountByType returns the number of signals of the given type.
func (s *ScanSession) CountByType(t Type) int {
	n := 0
	for _, sig := range s.Signals {
		if sig.Type == t {
			n++
		}
	}
	return n
}

// HasSignal reports whether any signal of the given type was emitted.
func (s *ScanSession) HasSignal(t Type) bool {
	return s.CountByType(t) > 0
}

// SignalsForRepo returns the signals attributed to one repository.
func (s *ScanSession) SignalsForRepo(repo string) []Signal {
	var out []Signal
	for _, sig := range s.Signals {
		if sig.Repository == repo {
			out = append(out, sig)
		}
	}
	return out
}

// Finalize marks the session complete (or failed when no repository finished)
// and stamps the completion time. A session that stopped early but completed
// at least one repository stays scorable: it finishes as complete+truncated.
func (s *ScanSession) Finalize(truncated bool) {
	s.CompletedAt = time.Now().UTC()
	s.Truncated = s.Truncated || truncated
	if truncated && len(s.RepositoriesScanned) == 0 {
		s.Status = StatusFailed
		return
	}
	s.Status = StatusComplete
}
