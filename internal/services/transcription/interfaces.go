package transcription

import (
	"context"
	"errors"
	"io"

	"gorm.io/gorm"

	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/modelcache"
	"github.com/killallgit/transcribe-api/internal/services/workers"
)

// ErrDeleted is returned by Repository.Update when the row no longer exists
var ErrDeleted = errors.New("transcription was deleted")

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	// Transcribe stores an upload and runs recognition on it
	Transcribe(ctx context.Context, in TranscribeInput) (*models.Transcription, error)

	// Retranscribe runs recognition on a stored audio file with another
	// model, returning an existing completed result when there is one
	Retranscribe(ctx context.Context, in RetranscribeInput) (*models.Transcription, error)

	// Get retrieves a transcription by ID
	Get(ctx context.Context, id string) (*models.Transcription, error)

	// List returns a page of transcriptions, newest first, with the total count
	List(ctx context.Context, limit, offset int) ([]models.Transcription, int64, error)

	// ListByAudioFile returns every transcription of an audio file
	ListByAudioFile(ctx context.Context, audioFileID string) ([]models.Transcription, error)

	// AudioFile returns the audio file a transcription was made from
	AudioFile(ctx context.Context, transcriptionID string) (*models.AudioFile, error)
}

// TranscribeInput is a new upload to transcribe
type TranscribeInput struct {
	Audio            io.Reader
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	ModelName        string
	Language         string
	Options          models.TranscriptionOptions
}

// RetranscribeInput selects a stored audio file and a model
type RetranscribeInput struct {
	AudioFileID string
	ModelName   string
	Language    string
	Options     models.TranscriptionOptions
}

// Engine turns audio into text with a loaded model
type Engine interface {
	Transcribe(ctx context.Context, req EngineRequest) (*EngineResult, error)
}

// EngineRequest is one recognition call
type EngineRequest struct {
	AudioPath string
	ModelName string
	ModelPath string
	Language  string
	VADFilter bool
}

// EngineResult is what the engine recognised
type EngineResult struct {
	Text     string
	Language string
	Duration float64
}

// ModelProvider returns loaded models, acquiring them on first use
type ModelProvider interface {
	GetOrLoad(ctx context.Context, name string) (*modelcache.Handle, error)
}

// Executor runs recognition on a bounded set of workers
type Executor interface {
	Submit(ctx context.Context, task workers.Task) error
}

// DurationProber measures stored audio
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Enhancer runs LLM enhancement on a completed transcription in place
type Enhancer interface {
	EnhanceTranscription(ctx context.Context, t *models.Transcription) error
}

// Repository defines the interface for transcription data persistence.
// Lookups return nil, nil when nothing matches.
type Repository interface {
	// Create creates a new transcription
	Create(ctx context.Context, transcription *models.Transcription) error

	// GetByID retrieves a transcription by ID
	GetByID(ctx context.Context, id string) (*models.Transcription, error)

	// Update saves every field of an existing transcription, or returns
	// ErrDeleted when it is gone
	Update(ctx context.Context, transcription *models.Transcription) error

	// Delete removes one transcription and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)

	// List returns transcriptions newest first
	List(ctx context.Context, limit, offset int) ([]models.Transcription, error)

	// Count returns the number of transcriptions
	Count(ctx context.Context) (int64, error)

	// GetByAudioFileID returns every transcription of an audio file
	GetByAudioFileID(ctx context.Context, audioFileID string) ([]models.Transcription, error)

	// DeleteByAudioFileID removes every transcription of an audio file
	DeleteByAudioFileID(ctx context.Context, audioFileID string) (int64, error)

	// WithTx returns a repository bound to tx
	WithTx(tx *gorm.DB) Repository
}
