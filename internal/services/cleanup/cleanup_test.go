package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/audiofiles"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type countingSweeper struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
}

func (s *countingSweeper) SweepTrash(ctx context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.maxAge = maxAge
	return 2, nil
}

func (s *countingSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// repoDeleter deletes rows directly so that the test can observe them
type repoDeleter struct {
	repo    audiofiles.Repository
	deleted []string
}

func (d *repoDeleter) DeleteAudioFile(ctx context.Context, id string) error {
	ok, err := d.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("audio file", id)
	}
	d.deleted = append(d.deleted, id)
	return nil
}

func TestRemoveOrphans(t *testing.T) {
	db := setupTestDB(t)
	repo := audiofiles.NewRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	orphan := &models.AudioFile{ID: uuid.NewString(), OriginalFilename: "a.wav", StoragePath: "/u/a.wav", UploadedAt: old}
	recent := &models.AudioFile{ID: uuid.NewString(), OriginalFilename: "b.wav", StoragePath: "/u/b.wav", UploadedAt: time.Now().UTC()}
	used := &models.AudioFile{ID: uuid.NewString(), OriginalFilename: "c.wav", StoragePath: "/u/c.wav", UploadedAt: old}
	for _, af := range []*models.AudioFile{orphan, recent, used} {
		require.NoError(t, repo.Create(ctx, af))
	}
	tr := models.NewTranscription(uuid.NewString(), used.ID, "base", models.TranscriptionOptions{})
	require.NoError(t, db.Create(tr).Error)

	deleter := &repoDeleter{repo: repo}
	svc := NewService(repo, deleter, nil, Options{RemoveOrphans: true}, nil)

	removed, err := svc.RemoveOrphans(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{orphan.ID}, deleter.deleted)
}

func TestRunOnce(t *testing.T) {
	modelDir := t.TempDir()
	partial := filepath.Join(modelDir, "ggml-small.bin.part")
	require.NoError(t, os.WriteFile(partial, []byte("x"), 0o644))
	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(partial, stale, stale))

	sweeper := &countingSweeper{}
	svc := NewService(nil, nil, sweeper, Options{TrashMaxAge: 2 * time.Hour, ModelDir: modelDir}, nil)

	report := svc.RunOnce(context.Background())
	assert.Equal(t, 2, report.TrashRemoved)
	assert.Equal(t, 1, report.PartialsRemoved)
	assert.Zero(t, report.OrphansRemoved)
	assert.Equal(t, 2*time.Hour, sweeper.maxAge)
	assert.NoFileExists(t, partial)
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := &countingSweeper{}
	svc := NewService(nil, nil, sweeper, Options{Interval: 5 * time.Millisecond}, nil)

	svc.Start(context.Background())
	svc.Start(context.Background())
	require.Eventually(t, func() bool { return sweeper.Calls() >= 2 }, time.Second, 5*time.Millisecond)

	svc.Stop()
	svc.Stop()
	calls := sweeper.Calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, sweeper.Calls())
}
