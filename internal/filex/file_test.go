package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNested(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "data", "store")

	got, err := EnsureDir(target)
	require.NoError(t, err)
	require.Equal(t, target, got)

	fi, err := os.Stat(target)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	again, err := EnsureDir(target)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestEnsureDir_FailsOnRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := EnsureDir(path)
	require.Error(t, err)
}

func TestWriteFileAtomic_ReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "projects.json")

	require.NoError(t, WriteFileAtomic(path, []byte("[]"), 0o600))
	require.NoError(t, WriteFileAtomic(path, []byte(`[{"id":"p1"}]`), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"p1"}]`, string(data))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "users.json")
	require.Error(t, WriteFileAtomic(path, []byte("[]"), 0o600))
}

func TestStageFile_LeavesTargetUntilRenamed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	tmp, err := StageFile(path, []byte("new"), 0o600)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(tmp))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "old", string(data))

	require.NoError(t, os.Rename(tmp, path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}
