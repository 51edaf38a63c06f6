package types

import (
	"context"

	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/database"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/modelcache"
	"github.com/killallgit/transcribe-api/internal/services/storage"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
)

// Enhancer runs LLM enhancement on a stored transcription
type Enhancer interface {
	Enhance(ctx context.Context, id string) (*models.Transcription, error)
}

// Deleter removes audio files and transcriptions
type Deleter interface {
	DeleteAudioFile(ctx context.Context, id string) error
	DeleteTranscription(ctx context.Context, id string) error
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB                   *database.DB
	TranscriptionService transcription.TranscriptionService
	EnhancementService   Enhancer
	DeletionService      Deleter
	ModelCache           *modelcache.Cache
	Storage              storage.FileStorage
	Logger               *zap.Logger

	// ModelDir is where downloaded models live
	ModelDir     string
	DefaultModel string
	// MaxUploadBytes bounds multipart uploads
	MaxUploadBytes int64
	Version        string
}

// Log returns the configured logger or a no-op logger
func (d *Dependencies) Log() *zap.Logger {
	if d == nil || d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
