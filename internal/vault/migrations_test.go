package vault

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeMezz/taskdown/internal/bridge"
	"github.com/KeMezz/taskdown/internal/storage"
	"github.com/KeMezz/taskdown/pkg/types"
)

func setupTestMigrator(t *testing.T) (*Migrator, *bridge.Bridge) {
	t.Helper()

	reg := storage.NewRegistry(storage.Options{})
	require.NoError(t, reg.Initialize(context.Background(), ":memory:"))
	t.Cleanup(func() { _ = reg.Close() })

	b := bridge.New(reg, nil)
	m := NewMigrator(b)
	m.now = func() time.Time { return time.Unix(1768694400, 0) }
	return m, b
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE a (id INTEGER);
  -- indented comment
CREATE TABLE b (
  id INTEGER -- trailing comments stay
);
;
-- only a comment;
`
	assert.Equal(t, []string{
		"CREATE TABLE a (id INTEGER)",
		"CREATE TABLE b (\n  id INTEGER -- trailing comments stay\n)",
	}, SplitStatements(script))

	assert.Empty(t, SplitStatements("  \n-- nothing\n"))
}

func TestSplitStatements_InitialMigration(t *testing.T) {
	stmts := SplitStatements(migrationV1)
	require.Len(t, stmts, 9)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS migrations")
}

func TestMigrator_FreshDatabase(t *testing.T) {
	m, b := setupTestMigrator(t)
	ctx := context.Background()

	v, err := m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.CurrentVersion)
	assert.Equal(t, len(AllMigrations), status.PendingCount)
	assert.Empty(t, status.Applied)

	applied, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, applied)

	for _, table := range []string{"migrations", "projects", "tasks", "reminders"} {
		_, err := b.Execute(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", []any{table}, "get")
		assert.NoError(t, err, table)
	}

	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.CurrentVersion)
	assert.Zero(t, status.PendingCount)
	require.Len(t, status.Applied, 1)
	assert.Equal(t, AppliedMigration{
		Version:   1,
		Name:      "initial",
		AppliedAt: time.Unix(1768694400, 0).UTC(),
	}, status.Applied[0])
}

func TestMigrator_Idempotent(t *testing.T) {
	m, _ := setupTestMigrator(t)
	ctx := context.Background()

	_, err := m.Migrate(ctx)
	require.NoError(t, err)

	applied, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_FailureReportsProgress(t *testing.T) {
	m, _ := setupTestMigrator(t)
	m.migrations = []Migration{
		{Version: 1, Name: "initial", SQL: migrationV1},
		{Version: 2, Name: "broken", SQL: "ALTER TABLE nope ADD COLUMN x INTEGER;"},
	}

	applied, err := m.Migrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSQL)
	assert.Contains(t, err.Error(), "migration 2 (broken)")
	assert.Equal(t, []int64{1}, applied)

	v, err := m.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestMigrator_SchemaConstraints(t *testing.T) {
	m, b := setupTestMigrator(t)
	ctx := context.Background()
	_, err := m.Migrate(ctx)
	require.NoError(t, err)

	_, err = b.Execute(ctx,
		"INSERT INTO tasks (id, title, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		[]any{"t1", "Plan", "someday", 1, 1}, "run")
	assert.ErrorIs(t, err, types.ErrSQL, "status CHECK constraint")

	_, err = b.Execute(ctx,
		"INSERT INTO tasks (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
		[]any{"t1", "Plan", 1, 1}, "run")
	require.NoError(t, err)

	res, err := b.Execute(ctx, "SELECT status, content, sort_order FROM tasks WHERE id = ?", []any{"t1"}, "get")
	require.NoError(t, err)
	status, _ := res.Row.Get("status")
	content, _ := res.Row.Get("content")
	order, _ := res.Row.Get("sort_order")
	assert.Equal(t, types.Text("backlog"), status)
	assert.Equal(t, types.Text("{}"), content)
	assert.Equal(t, types.Integer(0), order)
}
