// Package sqlite is the default ResultStore backend. Sessions are rows,
// signals are child rows keyed by an autoincrement sequence so insertion
// order survives the round trip, and the score is stored as a JSON document
// queried with json_extract for listings.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/lingohawk/goldiscan/internal/signal"
	"github.com/lingohawk/goldiscan/internal/storage"
)

// Store implements storage.ResultStore on SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.ResultStore = (*Store)(nil)

// New opens (creating if needed) the database at path and applies the
// schema. WAL keeps concurrent org scans from blocking each other's saves.
func New(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveSession(ctx context.Context, session *signal.ScanSession, score *signal.ScoreResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	scanned, err := json.Marshal(session.RepositoriesScanned)
	if err != nil {
		return err
	}
	skipped, err := json.Marshal(session.SkippedRepositories)
	if err != nil {
		return err
	}
	logJSON, err := json.Marshal(session.Log)
	if err != nil {
		return err
	}
	var scoreJSON any
	if score != nil {
		data, err := json.Marshal(score)
		if err != nil {
			return err
		}
		scoreJSON = string(data)
	}

	// Replacing a session replaces its signals too.
	if _, err := tx.ExecContext(ctx, `DELETE FROM signals WHERE session_id = ?`, session.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, organization, org_login, status, truncated, started_at, completed_at,
			 commits_analyzed, prs_analyzed, repositories_scanned, skipped_repositories, log, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Organization, session.OrgLogin, string(session.Status),
		boolToInt(session.Truncated), session.StartedAt.UTC().Format(time.RFC3339Nano),
		session.CompletedAt.UTC().Format(time.RFC3339Nano),
		session.CommitsAnalyzed, session.PRsAnalyzed,
		string(scanned), string(skipped), string(logJSON), scoreJSON)
	if err != nil {
		return err
	}

	for _, sig := range session.Signals {
		libs, err := json.Marshal(orEmpty(sig.Libraries))
		if err != nil {
			return err
		}
		keywords, err := json.Marshal(orEmpty(sig.Keywords))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO signals
				(session_id, type, repository, ref, significance, detected_at, excerpt, libraries, keywords, pattern)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.ID, string(sig.Type), sig.Repository, sig.Ref,
			string(sig.Significance), sig.DetectedAt.UTC().Format(time.RFC3339Nano),
			sig.Excerpt, string(libs), string(keywords), sig.Pattern)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*signal.ScanSession, *signal.ScoreResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT organization, org_login, status, truncated, started_at, completed_at,
		       commits_analyzed, prs_analyzed, repositories_scanned, skipped_repositories, log, score
		FROM sessions WHERE id = ?`, id.String())

	var (
		session                     signal.ScanSession
		status                      string
		truncated                   int
		startedAt, completedAt      string
		scanned, skipped, logJSON   string
		scoreJSON                   sql.NullString
	)
	err := row.Scan(&session.Organization, &session.OrgLogin, &status, &truncated,
		&startedAt, &completedAt, &session.CommitsAnalyzed, &session.PRsAnalyzed,
		&scanned, &skipped, &logJSON, &scoreJSON)
	if err == sql.ErrNoRows {
		return nil, nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	session.ID = id.String()
	session.Status = signal.SessionStatus(status)
	session.Truncated = truncated != 0
	if session.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if session.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
		return nil, nil, fmt.Errorf("parsing completed_at: %w", err)
	}
	if err := json.Unmarshal([]byte(scanned), &session.RepositoriesScanned); err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal([]byte(skipped), &session.SkippedRepositories); err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal([]byte(logJSON), &session.Log); err != nil {
		return nil, nil, err
	}

	if err := s.loadSignals(ctx, &session); err != nil {
		return nil, nil, err
	}

	var score *signal.ScoreResult
	if scoreJSON.Valid {
		score = &signal.ScoreResult{}
		if err := json.Unmarshal([]byte(scoreJSON.String), score); err != nil {
			return nil, nil, fmt.Errorf("parsing stored score: %w", err)
		}
	}
	return &session, score, nil
}

func (s *Store) loadSignals(ctx context.Context, session *signal.ScanSession) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, repository, ref, significance, detected_at, excerpt, libraries, keywords, pattern
		FROM signals WHERE session_id = ? ORDER BY seq`, session.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sig                        signal.Signal
			sigType, significance      string
			detectedAt, libs, keywords string
		)
		if err := rows.Scan(&sigType, &sig.Repository, &sig.Ref, &significance,
			&detectedAt, &sig.Excerpt, &libs, &keywords, &sig.Pattern); err != nil {
			return err
		}
		sig.Type = signal.Type(sigType)
		sig.Significance = signal.Significance(significance)
		if sig.DetectedAt, err = time.Parse(time.RFC3339Nano, detectedAt); err != nil {
			return fmt.Errorf("parsing detected_at: %w", err)
		}
		if err := json.Unmarshal([]byte(libs), &sig.Libraries); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(keywords), &sig.Keywords); err != nil {
			return err
		}
		session.Signals = append(session.Signals, sig)
	}
	return rows.Err()
}

func (s *Store) ListSessions(ctx context.Context, org string, limit int) ([]storage.SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.organization, s.org_login, s.status, s.started_at, s.completed_at,
		       COALESCE(json_extract(s.score, '$.tier'), ''),
		       COALESCE(json_extract(s.score, '$.p_intent'), 0),
		       (SELECT COUNT(*) FROM signals WHERE session_id = s.id)
		FROM sessions s
		WHERE ? = '' OR s.org_login = ?
		ORDER BY s.started_at DESC
		LIMIT ?`, org, org, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.SessionSummary
	for rows.Next() {
		var (
			idStr, status          string
			startedAt, completedAt string
			tier                   string
			row                    storage.SessionSummary
		)
		if err := rows.Scan(&idStr, &row.Organization, &row.OrgLogin, &status,
			&startedAt, &completedAt, &tier, &row.PIntent, &row.SignalCount); err != nil {
			return nil, err
		}
		if row.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parsing session id: %w", err)
		}
		row.Status = signal.SessionStatus(status)
		row.Tier = signal.Tier(tier)
		if row.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if row.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
