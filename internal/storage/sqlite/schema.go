package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	organization TEXT NOT NULL,
	org_login TEXT NOT NULL,
	status TEXT NOT NULL,
	truncated INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	commits_analyzed INTEGER NOT NULL DEFAULT 0,
	prs_analyzed INTEGER NOT NULL DEFAULT 0,
	repositories_scanned TEXT NOT NULL DEFAULT '[]',
	skipped_repositories TEXT NOT NULL DEFAULT '[]',
	log TEXT NOT NULL DEFAULT '[]',
	score TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_org ON sessions(org_login);

CREATE TABLE IF NOT EXISTS signals (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	repository TEXT NOT NULL,
	ref TEXT NOT NULL DEFAULT '',
	significance TEXT NOT NULL,
	detected_at TEXT NOT NULL,
	excerpt TEXT NOT NULL DEFAULT '',
	libraries TEXT NOT NULL DEFAULT '[]',
	keywords TEXT NOT NULL DEFAULT '[]',
	pattern TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_signals_session ON signals(session_id, seq);
`
