package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeMezz/taskdown/internal/config"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	return executeWithConfig(t, configPath, args...)
}

func executeWithConfig(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	for _, env := range []string{
		config.EnvConfigPath, config.EnvDBEngine, config.EnvLogLevel,
		config.EnvLogFormat, config.EnvVault, config.EnvMaxAssetBytes,
	} {
		t.Setenv(env, "")
	}

	cmd := NewRootCommand("test", "now")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", configPath, "--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand("test", "now")
	require.NotNil(t, cmd)
	assert.Equal(t, "taskdown", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand("test", "now")
	commands := [][]string{
		{"serve"}, {"exec"}, {"asset"}, {"vault"}, {"vault", "init"}, {"vault", "status"}, {"version"},
	}

	for _, path := range commands {
		name := strings.Join(path, " ")
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "command %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand("test", "now")

	for _, name := range []string{"config", "log-level", "engine"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestExecCommandFlags(t *testing.T) {
	cmd := NewRootCommand("test", "now")
	execCmd, _, err := cmd.Find([]string{"exec"})
	require.NoError(t, err)

	method := execCmd.Flags().Lookup("method")
	require.NotNil(t, method)
	assert.Equal(t, "m", method.Shorthand)
	assert.Equal(t, "run", method.DefValue)

	params := execCmd.Flags().Lookup("params")
	require.NotNil(t, params)
	assert.Equal(t, "p", params.Shorthand)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskdown test")
	assert.Contains(t, out, "driver")
}

func TestInvalidEngineFlag(t *testing.T) {
	_, err := execute(t, "--engine", "postgres", "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad", assert.AnError)))

	err := WrapExitError(ExitFailure, "exec failed", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "exec failed: "+assert.AnError.Error(), err.Error())
	assert.Equal(t, "plain", (&ExitError{Message: "plain"}).Error())
}

func TestParseParams(t *testing.T) {
	params, err := parseParams("")
	require.NoError(t, err)
	assert.Nil(t, params)

	params, err = parseParams(`[1, "a", null, true, 2.5]`)
	require.NoError(t, err)
	require.Len(t, params, 5)
	assert.Equal(t, "1", params[0].(interface{ String() string }).String())
	assert.Equal(t, "a", params[1])
	assert.Nil(t, params[2])
	assert.Equal(t, true, params[3])

	_, err = parseParams(`{"a": 1}`)
	assert.Error(t, err)

	for _, trailing := range []string{`[1] garbage`, `[1] [2]`, `[1],`} {
		_, err = parseParams(trailing)
		assert.Error(t, err, trailing)
	}

	params, err = parseParams("[1]\n  ")
	require.NoError(t, err)
	assert.Len(t, params, 1)
}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
