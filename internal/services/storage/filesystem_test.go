package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FilesystemStorage {
	t.Helper()
	base := t.TempDir()
	fs, err := NewFilesystemStorage(base, filepath.Join(base, ".trash"))
	require.NoError(t, err)
	return fs
}

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	fs := newTestStorage(t)

	path, n, err := fs.Save(ctx, strings.NewReader("RIFFdata"), "Memo.WAV")
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, ".wav", filepath.Ext(path))
	assert.Equal(t, fs.BasePath(), filepath.Dir(path))

	rc, err := fs.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "RIFFdata", string(content))
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	fs := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := fs.Save(ctx, strings.NewReader("data"), "a.mp3")
	require.Error(t, err)

	entries, _ := os.ReadDir(fs.BasePath())
	for _, e := range entries {
		assert.True(t, e.IsDir(), "partial file %s left behind", e.Name())
	}
}

func TestDeleteAndExists(t *testing.T) {
	ctx := context.Background()
	fs := newTestStorage(t)

	path, _, err := fs.Save(ctx, strings.NewReader("x"), "a.mp3")
	require.NoError(t, err)

	ok, err := fs.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fs.Delete(ctx, path))
	ok, err = fs.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	assert.NoError(t, fs.Delete(ctx, path))
}

func TestTrashRestorePurge(t *testing.T) {
	ctx := context.Background()
	fs := newTestStorage(t)

	path, _, err := fs.Save(ctx, strings.NewReader("x"), "a.mp3")
	require.NoError(t, err)

	trashed, err := fs.Trash(ctx, path)
	require.NoError(t, err)
	require.NotEmpty(t, trashed)
	assert.NoFileExists(t, path)
	assert.FileExists(t, trashed)

	require.NoError(t, fs.Restore(ctx, trashed, path))
	assert.FileExists(t, path)
	assert.NoFileExists(t, trashed)

	trashed, err = fs.Trash(ctx, path)
	require.NoError(t, err)
	require.NoError(t, fs.Purge(ctx, trashed))
	assert.NoFileExists(t, trashed)
	assert.NoFileExists(t, path)
}

func TestTrashMissingFile(t *testing.T) {
	fs := newTestStorage(t)
	trashed, err := fs.Trash(context.Background(), filepath.Join(fs.BasePath(), "gone.mp3"))
	require.NoError(t, err)
	assert.Empty(t, trashed)
}

func TestPathsOutsideStorageAreRejected(t *testing.T) {
	ctx := context.Background()
	fs := newTestStorage(t)
	outside := filepath.Join(t.TempDir(), "other.mp3")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	assert.ErrorIs(t, fs.Delete(ctx, outside), ErrOutsideStorage)
	_, err := fs.Trash(ctx, outside)
	assert.ErrorIs(t, err, ErrOutsideStorage)
	assert.ErrorIs(t, fs.Purge(ctx, outside), ErrOutsideStorage)
	assert.FileExists(t, outside)
}

func TestSweepTrash(t *testing.T) {
	ctx := context.Background()
	fs := newTestStorage(t)

	oldPath, _, err := fs.Save(ctx, strings.NewReader("old"), "old.mp3")
	require.NoError(t, err)
	newPath, _, err := fs.Save(ctx, strings.NewReader("new"), "new.mp3")
	require.NoError(t, err)

	trashed, err := fs.Trash(ctx, oldPath)
	require.NoError(t, err)
	newTrash, err := fs.Trash(ctx, newPath)
	require.NoError(t, err)

	// an entry trashed two hours ago
	past := time.Now().Add(-2 * time.Hour)
	oldTrash := filepath.Join(filepath.Dir(trashed), fmt.Sprintf("%d-old.mp3", past.UnixNano()))
	require.NoError(t, os.Rename(trashed, oldTrash))

	// entries without a timestamp prefix fall back to their mtime
	stray := filepath.Join(filepath.Dir(trashed), "stray.part")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(stray, past, past))

	removed, err := fs.SweepTrash(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NoFileExists(t, oldTrash)
	assert.NoFileExists(t, stray)
	assert.FileExists(t, newTrash)
}

func TestSweepTrashKeepsFreshlyTrashedOldUpload(t *testing.T) {
	ctx := context.Background()
	fs := newTestStorage(t)

	path, _, err := fs.Save(ctx, strings.NewReader("audio"), "memo.wav")
	require.NoError(t, err)
	uploaded := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, uploaded, uploaded))

	trashed, err := fs.Trash(ctx, path)
	require.NoError(t, err)

	removed, err := fs.SweepTrash(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.FileExists(t, trashed)

	require.NoError(t, fs.Restore(ctx, trashed, path))
	assert.FileExists(t, path)
}
