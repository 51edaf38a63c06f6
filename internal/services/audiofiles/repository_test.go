package audiofiles

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/killallgit/transcribe-api/internal/models"
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

func newAudioFile(name string, uploadedAt time.Time) *models.AudioFile {
	return &models.AudioFile{
		ID:               uuid.NewString(),
		OriginalFilename: name,
		StoragePath:      "/uploads/" + uuid.NewString() + ".wav",
		FileSizeBytes:    1024,
		MimeType:         "audio/wav",
		UploadedAt:       uploadedAt,
	}
}

func TestRepositoryCRUD(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	af := newAudioFile("meeting.wav", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, af))
	assert.Error(t, repo.Create(ctx, nil))

	got, err := repo.GetByID(ctx, af.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "meeting.wav", got.OriginalFilename)
	assert.Equal(t, af.StoragePath, got.StoragePath)

	missing, err := repo.GetByID(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := repo.Delete(ctx, af.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, af.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	for i, name := range []string{"a.wav", "b.wav", "c.wav"} {
		require.NoError(t, repo.Create(ctx, newAudioFile(name, now.Add(time.Duration(i)*time.Minute))))
	}

	files, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "c.wav", files[0].OriginalFilename)
	assert.Equal(t, "b.wav", files[1].OriginalFilename)

	files, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.wav", files[0].OriginalFilename)
}

func TestRepositoryListOrphans(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	old := time.Now().UTC().Add(-48 * time.Hour)

	orphan := newAudioFile("orphan.wav", old)
	used := newAudioFile("used.wav", old)
	recent := newAudioFile("recent.wav", time.Now().UTC())
	for _, af := range []*models.AudioFile{orphan, used, recent} {
		require.NoError(t, repo.Create(ctx, af))
	}

	tr := models.NewTranscription(uuid.NewString(), used.ID, "base", models.TranscriptionOptions{})
	require.NoError(t, db.Create(tr).Error)

	orphans, err := repo.ListOrphans(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)
}

func TestRepositoryWithTxRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	af := newAudioFile("tx.wav", time.Now().UTC())

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, repo.WithTx(tx).Create(ctx, af))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.GetByID(ctx, af.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
