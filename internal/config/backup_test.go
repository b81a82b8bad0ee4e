package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock makes each backup one second newer than the last.
func fakeClock(t *testing.T) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	t.Cleanup(func() { now = time.Now })
}

func TestBackup_NoFile(t *testing.T) {
	got, err := Backup(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBackup_CopiesContent(t *testing.T) {
	fakeClock(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	write(t, path, "classify:\n  workers: 4\n")

	backup, err := Backup(path)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(backup), "config.yaml.bak.20260301-120001")

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "classify:\n  workers: 4\n", string(data))
}

func TestBackup_KeepsNewestMaxBackups(t *testing.T) {
	fakeClock(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	write(t, path, "version: 1\n")

	var made []string
	for i := 0; i < MaxBackups+2; i++ {
		b, err := Backup(path)
		require.NoError(t, err)
		made = append(made, b)
	}

	backups, err := ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)

	// Newest first
	assert.Equal(t, made[len(made)-1], backups[0])
	assert.NoFileExists(t, made[0])
}

func TestRestore(t *testing.T) {
	fakeClock(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	write(t, path, "logging:\n  level: debug\n")
	backup, err := Backup(path)
	require.NoError(t, err)

	write(t, path, "logging:\n  level: error\n")

	// When: restoring the earlier backup
	require.NoError(t, Restore(path, backup))

	// Then: the old content is back and the replaced content was saved
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "logging:\n  level: debug\n", string(data))

	backups, err := ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestRestore_MissingBackup(t *testing.T) {
	err := Restore(filepath.Join(t.TempDir(), "config.yaml"), "/nonexistent/backup")
	assert.Error(t, err)
}
