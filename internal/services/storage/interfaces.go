package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage persists uploaded audio
type FileStorage interface {
	// Save stores data under a generated name keeping the extension of
	// originalName. It returns the storage path and the bytes written.
	Save(ctx context.Context, data io.Reader, originalName string) (string, int64, error)

	// Open opens a stored file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored file. A missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks if a stored file exists
	Exists(ctx context.Context, path string) (bool, error)

	// Trash moves a file out of the way so that the move can be undone.
	// It returns an empty trash path when the file was already gone.
	Trash(ctx context.Context, path string) (string, error)

	// Restore moves a trashed file back to its original path
	Restore(ctx context.Context, trashPath, path string) error

	// Purge permanently removes a trashed file
	Purge(ctx context.Context, trashPath string) error
}

// Sweeper is implemented by storages whose trash can be emptied by age
type Sweeper interface {
	SweepTrash(ctx context.Context, maxAge time.Duration) (int, error)
}
