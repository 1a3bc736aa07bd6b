package storage

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	external_id TEXT NOT NULL UNIQUE,
	name TEXT,
	golden_hours TEXT
);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	outcome TEXT NOT NULL,
	steps TEXT,
	first_step TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	project_id TEXT REFERENCES projects(id),
	text TEXT NOT NULL,
	status TEXT NOT NULL,
	is_key INTEGER NOT NULL DEFAULT 0,
	is_golden INTEGER NOT NULL DEFAULT 0,
	responsible TEXT,
	due_datetime TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	sorted_at TIMESTAMP,
	completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
CREATE INDEX IF NOT EXISTS idx_tasks_completed_at ON tasks(completed_at);

CREATE TABLE IF NOT EXISTS task_collaborators (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL REFERENCES tasks(id),
	collaborator_external_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_task_collaborators_task ON task_collaborators(task_id);

CREATE TABLE IF NOT EXISTS motivation_messages (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	text TEXT NOT NULL,
	UNIQUE(kind, text)
);
`,
	},
}
