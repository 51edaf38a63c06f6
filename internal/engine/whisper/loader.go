package whisper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/services/modelcache"
	"github.com/killallgit/transcribe-api/internal/services/progress"
	"github.com/killallgit/transcribe-api/pkg/download"
)

// Fetcher downloads a model file into place
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destination, expectedSHA256 string, progress download.ProgressFunc) (*download.DownloadResult, error)
}

// Loader acquires registry models into a model directory
type Loader struct {
	modelDir string
	fetcher  Fetcher
	logger   *zap.Logger
}

// NewLoader creates a loader storing models in modelDir
func NewLoader(modelDir string, fetcher Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{modelDir: modelDir, fetcher: fetcher, logger: logger}
}

// ModelDir returns the directory models are stored in
func (l *Loader) ModelDir() string {
	return l.modelDir
}

// Path returns where the file of model is stored
func (l *Loader) Path(m Model) string {
	return filepath.Join(l.modelDir, m.FileName)
}

// Load downloads name when it is not on disk, then verifies the file can be
// opened by the engine.
func (l *Loader) Load(ctx context.Context, name string, rep progress.Reporter) (*modelcache.Handle, error) {
	if rep == nil {
		rep = progress.NopReporter{}
	}

	model, ok := LookupModel(name)
	if !ok {
		return nil, unknownModel(name)
	}

	path := l.Path(model)
	if _, err := modelFileSize(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat model path: %w", err)
		}
		if l.fetcher == nil {
			return nil, fmt.Errorf("model %s is not downloaded", name)
		}

		l.logger.Info("downloading model",
			zap.String("model", name),
			zap.String("url", model.URL),
			zap.Int("approx_size_mb", model.SizeMB))

		rep.Downloading(0, int64(model.SizeMB)<<20)
		if _, err := l.fetcher.DownloadFile(ctx, model.URL, path, model.SHA256, rep.Downloading); err != nil {
			return nil, fmt.Errorf("download model %s: %w", name, err)
		}
	}

	rep.Loading()
	size, err := openModel(path)
	if err != nil {
		return nil, err
	}

	return &modelcache.Handle{
		Name:      name,
		Path:      path,
		SizeBytes: size,
		LoadedAt:  time.Now().UTC(),
	}, nil
}

// openModel checks the ggml magic at the start of the file
func openModel(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat model: %w", err)
	}

	magic := make([]byte, 4)
	if _, err := f.Read(magic); err != nil {
		return 0, fmt.Errorf("read model header: %w", err)
	}
	if !isGGML(magic) {
		return 0, fmt.Errorf("model %s is not a ggml file", filepath.Base(path))
	}
	return info.Size(), nil
}

// ggml files start with the little-endian magic 0x67676d6c
func isGGML(magic []byte) bool {
	return len(magic) == 4 && magic[0] == 'l' && magic[1] == 'm' && magic[2] == 'g' && magic[3] == 'g'
}
