// Package enhancement runs LLM post-processing on completed transcriptions.
package enhancement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/llm"
	"github.com/killallgit/transcribe-api/internal/metrics"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/keylock"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 60 * time.Second

// Completer produces enhanced text
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Service enhances transcriptions, one attempt at a time per transcription
type Service struct {
	repo    transcription.Repository
	llm     Completer
	timeout time.Duration
	locks   *keylock.Map
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ transcription.Enhancer = (*Service)(nil)

// NewService creates an enhancement service. A non-positive timeout means
// DefaultTimeout.
func NewService(repo transcription.Repository, completer Completer, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		llm:     completer,
		timeout: timeout,
		locks:   keylock.New(),
		logger:  logger.Named("enhancement"),
		metrics: m,
	}
}

// Enhance runs enhancement on the stored transcription id. LLM failures are
// recorded on the returned transcription; precondition failures are
// returned as VALIDATION errors.
func (s *Service) Enhance(ctx context.Context, id string) (*models.Transcription, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.CanBeEnhanced() {
		return nil, apperrors.ValidationError("transcription", "cannot be enhanced: "+strings.Join(t.EnhancementBlockers(), ", "))
	}

	if err := s.run(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// EnhanceTranscription enhances t in place. It is used right after a
// transcription completes; t is refreshed from the store first so a
// concurrent Enhance on the same id is never repeated.
func (s *Service) EnhanceTranscription(ctx context.Context, t *models.Transcription) error {
	if t == nil {
		return errors.New("transcription cannot be nil")
	}

	unlock, err := s.locks.Lock(ctx, t.ID)
	if err != nil {
		return err
	}
	defer unlock()

	fresh, err := s.load(ctx, t.ID)
	if err != nil {
		return err
	}
	if !fresh.CanBeEnhanced() {
		*t = *fresh
		return nil
	}

	err = s.run(ctx, fresh)
	*t = *fresh
	return err
}

func (s *Service) load(ctx context.Context, id string) (*models.Transcription, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceError("get transcription", err)
	}
	if t == nil {
		return nil, apperrors.NotFound("transcription", id)
	}
	return t, nil
}

// run moves t through processing to completed or failed, persisting each
// step. Only persistence and state errors are returned.
func (s *Service) run(ctx context.Context, t *models.Transcription) error {
	ctx = context.WithoutCancel(ctx)

	if err := t.MarkLLMProcessing(); err != nil {
		return apperrors.InvalidState(err)
	}
	if err := s.save(ctx, t); err != nil {
		return err
	}

	req := llm.Request{Text: *t.Text, EnableTashkeel: t.EnableTashkeel}
	if t.Language != nil {
		req.Language = *t.Language
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	text, callErr := s.llm.Complete(callCtx, req)
	elapsed := time.Since(start)
	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(callErr, context.DeadlineExceeded)
	cancel()

	if callErr == nil && strings.TrimSpace(text) == "" {
		callErr = llm.ErrEmptyCompletion
	}

	if callErr != nil {
		msg := callErr.Error()
		if timedOut {
			msg = fmt.Sprintf("LLM enhancement timed out after %s", s.timeout)
		}
		if err := t.FailLLMEnhancement(msg); err != nil {
			return apperrors.InvalidState(err)
		}
		s.logger.Warn("llm enhancement failed",
			zap.String("id", t.ID),
			zap.Duration("took", elapsed),
			zap.Error(apperrors.LLMError(callErr)))
	} else {
		if err := t.CompleteLLMEnhancement(text, elapsed.Seconds()); err != nil {
			return apperrors.InvalidState(err)
		}
		s.logger.Info("llm enhancement completed",
			zap.String("id", t.ID),
			zap.Duration("took", elapsed))
	}

	if err := s.save(ctx, t); err != nil {
		return err
	}
	s.metrics.RecordEnhancement(string(t.LLMEnhancementStatus), elapsed)
	return nil
}

func (s *Service) save(ctx context.Context, t *models.Transcription) error {
	err := s.repo.Update(ctx, t)
	if errors.Is(err, transcription.ErrDeleted) {
		s.logger.Info("transcription deleted during enhancement", zap.String("id", t.ID))
		return apperrors.NotFound("transcription", t.ID)
	}
	if err != nil {
		return apperrors.PersistenceError("update transcription", err)
	}
	return nil
}
