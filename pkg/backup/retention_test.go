package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleanupOldBackupsRemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "rafiq-backup-20200101-000000.json")
	fresh := filepath.Join(dir, "rafiq-backup-20990101-000000.json")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("hi"), 0o644))

	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(stale, old, old))

	require.NoError(t, CleanupOldBackups(dir, 30))

	_, err := os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
	_, err = os.Stat(other)
	require.NoError(t, err)
}

func TestCleanupOldBackupsNoopWhenRetentionDisabled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CleanupOldBackups(dir, 0))
}

func TestCleanupOldBackupsMissingDirIsNotError(t *testing.T) {
	require.NoError(t, CleanupOldBackups(filepath.Join(t.TempDir(), "missing"), 30))
}
