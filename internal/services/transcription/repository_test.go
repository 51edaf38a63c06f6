package transcription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/transcribe-api/internal/models"
)

func TestRepositoryUpdate(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	tr := models.NewTranscription("t-1", "a-1", "base", models.TranscriptionOptions{})
	require.NoError(t, repo.Create(ctx, tr))

	require.NoError(t, tr.MarkProcessing())
	require.NoError(t, repo.Update(ctx, tr))

	stored, err := repo.GetByID(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.TranscriptionStatusProcessing, stored.Status)
}

func TestRepositoryUpdateDoesNotResurrectDeletedRow(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	tr := models.NewTranscription("t-1", "a-1", "base", models.TranscriptionOptions{})
	require.NoError(t, repo.Create(ctx, tr))
	require.NoError(t, tr.MarkProcessing())
	require.NoError(t, repo.Update(ctx, tr))

	removed, err := repo.DeleteByAudioFileID(ctx, "a-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	require.NoError(t, tr.Complete("hello", "en"))
	err = repo.Update(ctx, tr)
	assert.ErrorIs(t, err, ErrDeleted)

	rows, err := repo.GetByAudioFileID(ctx, "a-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
