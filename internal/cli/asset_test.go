package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeMezz/taskdown/internal/assets"
)

func decodeAssetOutput(t *testing.T, out string) []assetOutput {
	t.Helper()
	var results []assetOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	return results
}

func TestAssetCommand(t *testing.T) {
	vaultRoot := t.TempDir()
	src := writeTestFile(t, "note.txt", []byte("hello"))

	out, err := execute(t, "asset", "--vault", vaultRoot, src)
	require.NoError(t, err)

	results := decodeAssetOutput(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "asset://localhost/note.txt", results[0].URL)
	assert.Empty(t, results[0].Error)

	data, err := os.ReadFile(filepath.Join(assets.Dir(vaultRoot), "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestAssetCommandRename(t *testing.T) {
	vaultRoot := t.TempDir()
	src := writeTestFile(t, "note.txt", []byte("hello"))

	out, err := execute(t, "asset", "--vault", vaultRoot, "--name", "../../renamed.txt", src)
	require.NoError(t, err)

	results := decodeAssetOutput(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "asset://localhost/renamed.txt", results[0].URL)
	assert.FileExists(t, filepath.Join(assets.Dir(vaultRoot), "renamed.txt"))
}

func TestAssetCommandImages(t *testing.T) {
	vaultRoot := t.TempDir()
	png := writeTestFile(t, "Photo.PNG", []byte("png"))
	txt := writeTestFile(t, "notes.txt", []byte("text"))

	out, err := execute(t, "asset", "--vault", vaultRoot, "--image", png, txt)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	results := decodeAssetOutput(t, out)
	require.Len(t, results, 2)
	assert.True(t, strings.HasPrefix(results[0].URL, assets.URLPrefix))
	assert.True(t, strings.HasSuffix(results[0].URL, ".png"))
	assert.Empty(t, results[0].Error)
	assert.Empty(t, results[1].URL)
	assert.Contains(t, results[1].Error, assets.ErrUnsupportedFormat.Error())
}

func TestAssetCommandErrors(t *testing.T) {
	src := writeTestFile(t, "note.txt", []byte("hello"))

	t.Run("no vault", func(t *testing.T) {
		_, err := execute(t, "asset", src)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("name with several files", func(t *testing.T) {
		_, err := execute(t, "asset", "--vault", t.TempDir(), "--name", "x", src, src)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := execute(t, "asset", "--vault", t.TempDir(), filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := execute(t, "asset", "--vault", t.TempDir(), "--name", "..", src)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}
