package ledger

// the partial index allows any number of closed rows per kind but only one live one
const schema = `
CREATE TABLE IF NOT EXISTS repositories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner TEXT NOT NULL,
	name TEXT NOT NULL,
	is_forked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(owner, name)
);

CREATE TABLE IF NOT EXISTS pull_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repository_id INTEGER NOT NULL REFERENCES repositories(id),
	kind TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	number INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL,
	merged BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_pull_requests_live_kind
	ON pull_requests(repository_id, kind) WHERE state <> 'closed';

CREATE INDEX IF NOT EXISTS idx_pull_requests_state ON pull_requests(state);
`
