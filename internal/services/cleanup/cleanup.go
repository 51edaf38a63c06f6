// Package cleanup removes leftovers: trashed audio, orphaned audio files and
// interrupted model downloads.
package cleanup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/services/audiofiles"
	"github.com/killallgit/transcribe-api/internal/services/storage"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
	"github.com/killallgit/transcribe-api/pkg/download"
)

// AudioDeleter removes an audio file with everything that belongs to it
type AudioDeleter interface {
	DeleteAudioFile(ctx context.Context, id string) error
}

// Options configures the cleanup service
type Options struct {
	Interval      time.Duration
	TrashMaxAge   time.Duration
	RemoveOrphans bool
	OrphanMinAge  time.Duration
	// ModelDir is scanned for stale partial downloads when set
	ModelDir      string
	PartialMaxAge time.Duration
}

// Report counts what one pass removed
type Report struct {
	TrashRemoved    int
	OrphansRemoved  int
	PartialsRemoved int
}

// Service handles periodic cleanup
type Service struct {
	audioFiles audiofiles.Repository
	deleter    AudioDeleter
	sweeper    storage.Sweeper
	opts       Options
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service. audioFiles and deleter may be
// nil when orphan removal is not used.
func NewService(audioFiles audiofiles.Repository, deleter AudioDeleter, sweeper storage.Sweeper, opts Options, logger *zap.Logger) *Service {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.TrashMaxAge <= 0 {
		opts.TrashMaxAge = time.Hour
	}
	if opts.OrphanMinAge <= 0 {
		opts.OrphanMinAge = 24 * time.Hour
	}
	if opts.PartialMaxAge <= 0 {
		opts.PartialMaxAge = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		audioFiles: audioFiles,
		deleter:    deleter,
		sweeper:    sweeper,
		opts:       opts,
		logger:     logger.Named("cleanup"),
	}
}

// Start runs a pass now and then every interval until Stop or ctx ends
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()

		s.RunOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-ctx.Done():
				s.logger.Info("cleanup service stopped")
				return
			}
		}
	}()

	s.logger.Info("cleanup service started",
		zap.Duration("interval", s.opts.Interval),
		zap.Duration("trash_max_age", s.opts.TrashMaxAge),
		zap.Bool("remove_orphans", s.opts.RemoveOrphans))
}

// Stop stops the service and waits for a running pass to return
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// RunOnce performs a single pass. Failures are logged.
func (s *Service) RunOnce(ctx context.Context) Report {
	var report Report

	if n, err := s.SweepTrash(ctx); err != nil {
		s.logger.Warn("trash sweep failed", zap.Error(err))
	} else {
		report.TrashRemoved = n
	}

	if s.opts.RemoveOrphans {
		if n, err := s.RemoveOrphans(ctx, s.opts.OrphanMinAge); err != nil {
			s.logger.Warn("orphan removal failed", zap.Error(err))
		} else {
			report.OrphansRemoved = n
		}
	}

	if s.opts.ModelDir != "" {
		if n, err := download.CleanupPartialFiles(s.opts.ModelDir, s.opts.PartialMaxAge); err != nil {
			s.logger.Warn("partial download cleanup failed", zap.Error(err))
		} else {
			report.PartialsRemoved = n
		}
	}

	if report.TrashRemoved+report.OrphansRemoved+report.PartialsRemoved > 0 {
		s.logger.Info("cleanup pass finished",
			zap.Int("trash", report.TrashRemoved),
			zap.Int("orphans", report.OrphansRemoved),
			zap.Int("partials", report.PartialsRemoved))
	}
	return report
}

// SweepTrash purges trashed audio older than the configured age
func (s *Service) SweepTrash(ctx context.Context) (int, error) {
	if s.sweeper == nil {
		return 0, nil
	}
	return s.sweeper.SweepTrash(ctx, s.opts.TrashMaxAge)
}

// RemoveOrphans deletes audio files older than minAge that have no
// transcriptions left
func (s *Service) RemoveOrphans(ctx context.Context, minAge time.Duration) (int, error) {
	if s.audioFiles == nil || s.deleter == nil {
		return 0, nil
	}

	orphans, err := s.audioFiles.ListOrphans(ctx, time.Now().UTC().Add(-minAge))
	if err != nil {
		return 0, apperrors.PersistenceError("list orphans", err)
	}

	removed := 0
	for _, af := range orphans {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if err := s.deleter.DeleteAudioFile(ctx, af.ID); err != nil {
			if apperrors.Is(err, apperrors.ErrCodeNotFound) {
				continue
			}
			s.logger.Warn("failed to remove orphaned audio file", zap.String("audio_file_id", af.ID), zap.Error(err))
			continue
		}
		s.logger.Debug("removed orphaned audio file", zap.String("audio_file_id", af.ID))
		removed++
	}
	return removed, nil
}
