package audiofiles

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/killallgit/transcribe-api/internal/models"
)

// Repository defines the interface for audio file persistence.
// Lookups return nil, nil when nothing matches.
type Repository interface {
	// Create stores a new audio file row
	Create(ctx context.Context, audioFile *models.AudioFile) error

	// GetByID retrieves an audio file by ID
	GetByID(ctx context.Context, id string) (*models.AudioFile, error)

	// List returns audio files, newest first
	List(ctx context.Context, limit, offset int) ([]models.AudioFile, error)

	// Delete removes an audio file row and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)

	// ListOrphans returns audio files uploaded before cutoff that have no
	// transcriptions
	ListOrphans(ctx context.Context, cutoff time.Time) ([]models.AudioFile, error)

	// WithTx returns a repository bound to tx
	WithTx(tx *gorm.DB) Repository
}
