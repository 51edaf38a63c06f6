package transcription

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/killallgit/transcribe-api/internal/models"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new transcription repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create creates a new transcription
func (r *repository) Create(ctx context.Context, transcription *models.Transcription) error {
	if transcription == nil {
		return errors.New("transcription cannot be nil")
	}

	result := r.db.WithContext(ctx).Create(transcription)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// GetByID retrieves a transcription by ID
func (r *repository) GetByID(ctx context.Context, id string) (*models.Transcription, error) {
	var transcription models.Transcription

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&transcription)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &transcription, nil
}

// Update writes every field of an existing transcription. It never inserts:
// a row removed in the meantime yields ErrDeleted.
func (r *repository) Update(ctx context.Context, transcription *models.Transcription) error {
	if transcription == nil {
		return errors.New("transcription cannot be nil")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Transcription{}).
		Where("id = ?", transcription.ID).
		Select("*").
		Updates(transcription)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDeleted
	}

	return nil
}

// Delete removes a transcription
func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transcription{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Transcription, error) {
	var transcriptions []models.Transcription

	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&transcriptions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transcriptions, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64

	result := r.db.WithContext(ctx).Model(&models.Transcription{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// GetByAudioFileID returns the transcriptions of an audio file, oldest first
func (r *repository) GetByAudioFileID(ctx context.Context, audioFileID string) ([]models.Transcription, error) {
	var transcriptions []models.Transcription

	result := r.db.WithContext(ctx).
		Where("audio_file_id = ?", audioFileID).
		Order("created_at ASC").
		Find(&transcriptions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transcriptions, nil
}

func (r *repository) DeleteByAudioFileID(ctx context.Context, audioFileID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("audio_file_id = ?", audioFileID).Delete(&models.Transcription{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
