package store

// Collection names. Every atomic unit declares the collections it touches.
const (
	Tasks       = "tasks"
	Phases      = "phases"
	Transitions = "transitions"
)

// SchemaVersion is the migration level Open brings a database to.
const SchemaVersion = 2

type collectionDef struct {
	table string
	// indexes maps an index name to its key columns, outermost first.
	indexes map[string][]string
}

var collections = map[string]collectionDef{
	Tasks: {
		table: "tasks",
		indexes: map[string][]string{
			"title":     {"title"},
			"createdAt": {"created_at"},
			"updatedAt": {"updated_at"},
		},
	},
	Phases: {
		table: "phases",
		indexes: map[string][]string{
			"taskId":       {"task_id"},
			"taskId_index": {"task_id", "idx"},
		},
	},
	Transitions: {
		table: "transitions",
		indexes: map[string][]string{
			"taskId":                {"task_id"},
			"transitionedAt":        {"transitioned_at"},
			"taskId_transitionedAt": {"task_id", "transitioned_at"},
		},
	},
}

type migration struct {
	version    int
	name       string
	statements []string
}

// migrations run in order, each inside its own transaction. Never edit an
// entry that has shipped; append a new version instead.
var migrations = []migration{
	{
		version: 1,
		name:    "tasks and completions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_title ON tasks(title)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at)`,
			`CREATE TABLE IF NOT EXISTS completions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL,
  completed_at INTEGER NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_completions_task_id ON completions(task_id)`,
			`CREATE INDEX IF NOT EXISTS idx_completions_completed_at ON completions(completed_at)`,
			`CREATE INDEX IF NOT EXISTS idx_completions_task_id_completed_at ON completions(task_id, completed_at)`,
		},
	},
	{
		version: 2,
		name:    "phases and transitions",
		statements: []string{
			`ALTER TABLE tasks ADD COLUMN current_phase_index INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE tasks ADD COLUMN current_phase_since INTEGER NOT NULL DEFAULT 0`,
			`CREATE TABLE IF NOT EXISTS phases (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL,
  idx INTEGER NOT NULL,
  name TEXT NOT NULL,
  duration_days INTEGER
)`,
			`CREATE INDEX IF NOT EXISTS idx_phases_task_id ON phases(task_id)`,
			`CREATE INDEX IF NOT EXISTS idx_phases_task_id_idx ON phases(task_id, idx)`,
			`CREATE TABLE IF NOT EXISTS transitions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL,
  from_phase_index INTEGER NOT NULL,
  to_phase_index INTEGER NOT NULL,
  transitioned_at INTEGER NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_transitions_task_id ON transitions(task_id)`,
			`CREATE INDEX IF NOT EXISTS idx_transitions_transitioned_at ON transitions(transitioned_at)`,
			`CREATE INDEX IF NOT EXISTS idx_transitions_task_id_transitioned_at ON transitions(task_id, transitioned_at)`,
			// Every pre-phase task becomes a single-step task and its
			// completions become 0->0 transitions.
			`INSERT INTO phases (task_id, idx, name, duration_days) SELECT id, 0, 'Done', NULL FROM tasks ORDER BY id`,
			`INSERT INTO transitions (task_id, from_phase_index, to_phase_index, transitioned_at)
SELECT task_id, 0, 0, completed_at FROM completions WHERE task_id IN (SELECT id FROM tasks) ORDER BY id`,
			`UPDATE tasks SET current_phase_since = COALESCE(
  (SELECT MAX(completed_at) FROM completions WHERE completions.task_id = tasks.id),
  created_at
)`,
			`DROP TABLE completions`,
		},
	},
}
