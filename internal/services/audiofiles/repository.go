package audiofiles

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/killallgit/transcribe-api/internal/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new audio file repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, audioFile *models.AudioFile) error {
	if audioFile == nil {
		return errors.New("audio file cannot be nil")
	}
	return r.db.WithContext(ctx).Create(audioFile).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.AudioFile, error) {
	var audioFile models.AudioFile

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&audioFile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &audioFile, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.AudioFile, error) {
	var audioFiles []models.AudioFile

	result := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&audioFiles)
	if result.Error != nil {
		return nil, result.Error
	}

	return audioFiles, nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AudioFile{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListOrphans(ctx context.Context, cutoff time.Time) ([]models.AudioFile, error) {
	var audioFiles []models.AudioFile

	sub := r.db.Model(&models.Transcription{}).Select("1").Where("transcriptions.audio_file_id = audio_files.id")
	result := r.db.WithContext(ctx).
		Where("uploaded_at < ?", cutoff).
		Where("NOT EXISTS (?)", sub).
		Order("uploaded_at ASC").
		Find(&audioFiles)
	if result.Error != nil {
		return nil, result.Error
	}

	return audioFiles, nil
}
