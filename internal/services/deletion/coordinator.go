// Package deletion removes audio files together with their transcriptions
// and stored audio, all or nothing.
package deletion

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/killallgit/transcribe-api/internal/metrics"
	"github.com/killallgit/transcribe-api/internal/services/audiofiles"
	"github.com/killallgit/transcribe-api/internal/services/storage"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

// Coordinator performs cascading deletes
type Coordinator struct {
	db             *gorm.DB
	audioFiles     audiofiles.Repository
	transcriptions transcription.Repository
	storage        storage.FileStorage
	logger         *zap.Logger
	metrics        *metrics.Metrics

	commit func(tx *gorm.DB) error
}

// NewCoordinator creates a deletion coordinator
func NewCoordinator(db *gorm.DB, audioFiles audiofiles.Repository, transcriptions transcription.Repository, fs storage.FileStorage, logger *zap.Logger, m *metrics.Metrics) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		db:             db,
		audioFiles:     audioFiles,
		transcriptions: transcriptions,
		storage:        fs,
		logger:         logger.Named("deletion"),
		metrics:        m,
		commit: func(tx *gorm.DB) error {
			return tx.Commit().Error
		},
	}
}

// DeleteAudioFile removes an audio file, all of its transcriptions and the
// stored audio. Either everything is removed or nothing is.
func (c *Coordinator) DeleteAudioFile(ctx context.Context, id string) (err error) {
	defer func() { c.metrics.RecordDeletion("audio_file", err) }()

	tx := c.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.PersistenceError("begin transaction", tx.Error)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	audioRepo := c.audioFiles.WithTx(tx)
	transcriptionRepo := c.transcriptions.WithTx(tx)

	audioFile, err := audioRepo.GetByID(ctx, id)
	if err != nil {
		return apperrors.PersistenceError("get audio file", err)
	}
	if audioFile == nil {
		return apperrors.NotFound("audio file", id)
	}

	removed, err := transcriptionRepo.DeleteByAudioFileID(ctx, id)
	if err != nil {
		return apperrors.PersistenceError("delete transcriptions", err)
	}
	if _, err := audioRepo.Delete(ctx, id); err != nil {
		return apperrors.PersistenceError("delete audio file", err)
	}

	trashPath, err := c.storage.Trash(ctx, audioFile.StoragePath)
	if err != nil {
		return apperrors.FileSystemError("trash", audioFile.StoragePath, err)
	}

	if err := c.commit(tx); err != nil {
		if restoreErr := c.storage.Restore(context.WithoutCancel(ctx), trashPath, audioFile.StoragePath); restoreErr != nil {
			c.logger.Error("failed to restore audio after aborted delete",
				zap.String("audio_file_id", id),
				zap.String("trash_path", trashPath),
				zap.Error(restoreErr))
		}
		return apperrors.PersistenceError("commit delete", err)
	}
	committed = true

	if trashPath == "" {
		c.logger.Warn("audio file was already missing from storage",
			zap.String("audio_file_id", id),
			zap.String("path", audioFile.StoragePath))
	} else if err := c.storage.Purge(context.WithoutCancel(ctx), trashPath); err != nil {
		// left for the trash sweeper
		c.logger.Warn("failed to purge trashed audio", zap.String("trash_path", trashPath), zap.Error(err))
	}

	c.logger.Info("audio file deleted",
		zap.String("audio_file_id", id),
		zap.Int64("transcriptions", removed))
	return nil
}

// DeleteTranscription removes a single transcription. The audio file and
// sibling transcriptions are kept.
func (c *Coordinator) DeleteTranscription(ctx context.Context, id string) (err error) {
	defer func() { c.metrics.RecordDeletion("transcription", err) }()

	deleted, err := c.transcriptions.Delete(ctx, id)
	if err != nil {
		return apperrors.PersistenceError("delete transcription", err)
	}
	if !deleted {
		return apperrors.NotFound("transcription", id)
	}

	c.logger.Info("transcription deleted", zap.String("id", id))
	return nil
}
