package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KeMezz/taskdown/internal/bridge"
	"github.com/KeMezz/taskdown/pkg/types"
)

// Migration is one numbered schema change.
type Migration struct {
	Version int64
	Name    string
	SQL     string
}

// AllMigrations contains all schema migrations in order.
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "initial",
		SQL:     migrationV1,
	},
}

const migrationV1 = `
-- Migrations tracking table (must be first)
CREATE TABLE IF NOT EXISTS migrations (
  version INTEGER PRIMARY KEY NOT NULL,
  name TEXT NOT NULL,
  applied_at INTEGER NOT NULL
);

-- Projects table
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY NOT NULL,
  name TEXT NOT NULL,
  color TEXT DEFAULT '#6366f1',
  icon TEXT,
  sort_order INTEGER DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

-- Tasks table
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY NOT NULL,
  title TEXT NOT NULL,
  content TEXT DEFAULT '{}',
  project_id TEXT REFERENCES projects(id) ON DELETE SET NULL,
  status TEXT DEFAULT 'backlog' CHECK (status IN ('backlog', 'next', 'waiting', 'done')),
  due_date INTEGER,
  sort_order INTEGER DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

-- Reminders table
CREATE TABLE IF NOT EXISTS reminders (
  id TEXT PRIMARY KEY NOT NULL,
  task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  remind_at INTEGER NOT NULL,
  is_sent INTEGER DEFAULT 0,
  created_at INTEGER NOT NULL
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_reminders_task_id ON reminders(task_id);
CREATE INDEX IF NOT EXISTS idx_reminders_remind_at ON reminders(remind_at);
`

// AppliedMigration is a row of the migrations table.
type AppliedMigration struct {
	Version   int64     `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

// Status summarizes the schema state of the open database.
type Status struct {
	CurrentVersion int64              `json:"current_version"`
	PendingCount   int                `json:"pending_count"`
	Applied        []AppliedMigration `json:"applied"`
}

// Migrator applies AllMigrations through the SQL bridge.
type Migrator struct {
	bridge     *bridge.Bridge
	migrations []Migration
	now        func() time.Time
}

// NewMigrator creates a Migrator for the built-in migration set.
func NewMigrator(b *bridge.Bridge) *Migrator {
	return &Migrator{
		bridge:     b,
		migrations: AllMigrations,
		now:        time.Now,
	}
}

// SplitStatements splits a migration script on ';', dropping comment lines
// and empty statements.
func SplitStatements(script string) []string {
	var statements []string
	for _, chunk := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// CurrentVersion returns the highest applied migration version, 0 when the
// migrations table does not exist yet.
func (m *Migrator) CurrentVersion(ctx context.Context) (int64, error) {
	exists, err := m.hasMigrationsTable(ctx)
	if err != nil || !exists {
		return 0, err
	}

	res, err := m.bridge.Execute(ctx, "SELECT MAX(version) AS version FROM migrations", nil, string(types.ModeGet))
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}
	v, _ := res.Row.Get("version")
	return intValue(v), nil
}

// Migrate applies every pending migration in version order and returns the
// versions applied. On failure the versions applied so far are returned
// with the error.
func (m *Migrator) Migrate(ctx context.Context) ([]int64, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	applied := []int64{}
	for _, mig := range m.pending(current) {
		for _, stmt := range SplitStatements(mig.SQL) {
			if _, err := m.bridge.Execute(ctx, stmt, nil, string(types.ModeRun)); err != nil {
				return applied, fmt.Errorf("failed to apply migration %d (%s): %w", mig.Version, mig.Name, err)
			}
		}

		_, err := m.bridge.Execute(ctx,
			"INSERT INTO migrations (version, name, applied_at) VALUES (?, ?, ?)",
			[]any{mig.Version, mig.Name, m.now().Unix()},
			string(types.ModeRun))
		if err != nil {
			return applied, fmt.Errorf("failed to record migration %d: %w", mig.Version, err)
		}
		applied = append(applied, mig.Version)
	}

	return applied, nil
}

// Status reports the current version, the number of pending migrations and
// the applied ones, newest first.
func (m *Migrator) Status(ctx context.Context) (*Status, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		CurrentVersion: current,
		PendingCount:   len(m.pending(current)),
		Applied:        []AppliedMigration{},
	}
	if current == 0 {
		return status, nil
	}

	res, err := m.bridge.Execute(ctx,
		"SELECT version, name, applied_at FROM migrations ORDER BY version DESC", nil, string(types.ModeAll))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	for _, row := range res.Rows {
		version, _ := row.Get("version")
		name, _ := row.Get("name")
		appliedAt, _ := row.Get("applied_at")
		status.Applied = append(status.Applied, AppliedMigration{
			Version:   intValue(version),
			Name:      textValue(name),
			AppliedAt: time.Unix(intValue(appliedAt), 0).UTC(),
		})
	}
	return status, nil
}

func (m *Migrator) hasMigrationsTable(ctx context.Context) (bool, error) {
	_, err := m.bridge.Execute(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'migrations'", nil, string(types.ModeGet))
	if errors.Is(err, types.ErrNoRowFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check migrations table: %w", err)
	}
	return true, nil
}

func (m *Migrator) pending(current int64) []Migration {
	var pending []Migration
	for _, mig := range m.migrations {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })
	return pending
}

func intValue(v types.Value) int64 {
	switch val := v.(type) {
	case types.Integer:
		return int64(val)
	case types.Float:
		return int64(val)
	default:
		return 0
	}
}

func textValue(v types.Value) string {
	switch val := v.(type) {
	case types.Text:
		return string(val)
	case types.Other:
		return string(val)
	default:
		return ""
	}
}
