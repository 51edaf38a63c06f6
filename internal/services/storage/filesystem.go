package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrOutsideStorage is returned for paths that do not belong to the storage
var ErrOutsideStorage = errors.New("path is outside the storage directory")

// FilesystemStorage implements FileStorage on the local filesystem
type FilesystemStorage struct {
	basePath  string
	trashPath string
}

// NewFilesystemStorage creates a filesystem storage rooted at basePath.
// trashPath must be on the same filesystem so that trashing is a rename.
func NewFilesystemStorage(basePath, trashPath string) (*FilesystemStorage, error) {
	if trashPath == "" {
		trashPath = filepath.Join(basePath, ".trash")
	}

	for _, dir := range []string{basePath, trashPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	trash, err := filepath.Abs(trashPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve trash directory: %w", err)
	}

	return &FilesystemStorage{
		basePath:  base,
		trashPath: trash,
	}, nil
}

// BasePath returns the absolute storage directory
func (fs *FilesystemStorage) BasePath() string {
	return fs.basePath
}

// Save saves data to the filesystem under a generated name
func (fs *FilesystemStorage) Save(ctx context.Context, data io.Reader, originalName string) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	fullPath := filepath.Join(fs.basePath, uuid.New().String()+ext)

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, &contextReader{ctx: ctx, r: data})
	if err != nil {
		file.Close()
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}

	return fullPath, written, nil
}

// Open opens a stored file
func (fs *FilesystemStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := fs.checkPath(path); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes data from the filesystem
func (fs *FilesystemStorage) Delete(ctx context.Context, path string) error {
	if err := fs.checkPath(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists
func (fs *FilesystemStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// Trash renames a stored file into the trash directory
func (fs *FilesystemStorage) Trash(ctx context.Context, path string) (string, error) {
	if err := fs.checkPath(path); err != nil {
		return "", err
	}

	trashed := filepath.Join(fs.trashPath, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(path)))
	if err := os.Rename(path, trashed); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to move file to trash: %w", err)
	}
	return trashed, nil
}

// Restore moves a trashed file back
func (fs *FilesystemStorage) Restore(ctx context.Context, trashPath, path string) error {
	if trashPath == "" {
		return nil
	}
	if err := os.Rename(trashPath, path); err != nil {
		return fmt.Errorf("failed to restore file from trash: %w", err)
	}
	return nil
}

// Purge removes a trashed file
func (fs *FilesystemStorage) Purge(ctx context.Context, trashPath string) error {
	if trashPath == "" {
		return nil
	}
	if !within(fs.trashPath, trashPath) {
		return ErrOutsideStorage
	}
	if err := os.Remove(trashPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to purge trashed file: %w", err)
	}
	return nil
}

// SweepTrash removes trashed files older than maxAge
func (fs *FilesystemStorage) SweepTrash(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(fs.trashPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read trash directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		trashedAt, ok := trashTime(entry.Name())
		if !ok {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			trashedAt = info.ModTime()
		}
		if time.Since(trashedAt) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(fs.trashPath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// trashTime reads the moment a file was trashed from the prefix Trash puts
// on its name. A rename keeps the upload's mtime, so ModTime is only used
// for entries without the prefix.
func trashTime(name string) (time.Time, bool) {
	prefix, _, found := strings.Cut(name, "-")
	if !found {
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || nanos <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func (fs *FilesystemStorage) checkPath(path string) error {
	if !within(fs.basePath, path) || within(fs.trashPath, path) {
		return ErrOutsideStorage
	}
	return nil
}

func within(dir, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
