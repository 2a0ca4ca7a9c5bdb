package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeMezz/taskdown/pkg/types"
)

func TestExecCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "notes.db")

	out, err := execute(t, "exec", "--db", db, "CREATE TABLE t (id INTEGER, name TEXT)")
	require.NoError(t, err)
	assert.JSONEq(t, `{"changes": 0}`, out)

	out, err = execute(t, "exec", "--db", db, "INSERT INTO t VALUES (?, ?), (?, ?)", "--params", `[1, "a", 2, "b"]`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"changes": 2}`, out)

	out, err = execute(t, "exec", "--db", db, "-m", "get", "SELECT id, name FROM t WHERE id = ?", "-p", `[2]`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 2, "name": "b"}`, out)

	out, err = execute(t, "exec", "--db", db, "--method", "all", "SELECT id FROM t ORDER BY id")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 1}, {"id": 2}]`, out)

	out, err = execute(t, "exec", "--db", db, "--method", "all", "SELECT id FROM t WHERE id > 10")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestExecCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "notes.db")

	t.Run("no database", func(t *testing.T) {
		_, err := execute(t, "exec", "SELECT 1")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("db and vault", func(t *testing.T) {
		_, err := execute(t, "exec", "--db", db, "--vault", t.TempDir(), "SELECT 1")
		require.Error(t, err)
	})

	t.Run("bad params", func(t *testing.T) {
		_, err := execute(t, "exec", "--db", db, "SELECT ?", "--params", "not json")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("invalid method", func(t *testing.T) {
		_, err := execute(t, "exec", "--db", db, "--method", "nope", "SELECT 1")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.ErrorIs(t, err, types.ErrInvalidMode)
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("no row", func(t *testing.T) {
		_, err := execute(t, "exec", "--db", db, "--method", "get", "SELECT 1 WHERE 0")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrNoRowFound)
	})

	t.Run("sql error", func(t *testing.T) {
		_, err := execute(t, "exec", "--db", db, "SELEC 1")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrSQL)
	})
}
