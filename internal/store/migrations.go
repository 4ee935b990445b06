package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL UNIQUE,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	url                TEXT NOT NULL DEFAULT '',
	project_id         TEXT NOT NULL REFERENCES projects(id),
	user_id            TEXT NOT NULL REFERENCES users(id),
	ado_external_id    INTEGER,
	ado_work_item_type TEXT,
	ado_iteration_path TEXT,
	ado_assignee       TEXT,
	ado_last_synced_at DATETIME,
	ado_source_url     TEXT,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

-- The import dedup key: at most one task per (project, work item).
-- Partial so manually created tasks (NULL external id) stay unconstrained.
CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_project_external
	ON tasks(project_id, ado_external_id)
	WHERE ado_external_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
