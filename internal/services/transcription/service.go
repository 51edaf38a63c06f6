package transcription

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/metrics"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/audiofiles"
	"github.com/killallgit/transcribe-api/internal/services/keylock"
	"github.com/killallgit/transcribe-api/internal/services/storage"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// Config holds the service settings
type Config struct {
	DefaultModel string
	Limits       models.UploadLimits
	// KnownModel rejects model names up front when set
	KnownModel func(name string) bool
}

// Dependencies are the collaborators of the service. Prober and Enhancer
// are optional.
type Dependencies struct {
	Repo       Repository
	AudioFiles audiofiles.Repository
	Storage    storage.FileStorage
	Prober     DurationProber
	Models     ModelProvider
	Engine     Engine
	Executor   Executor
	Enhancer   Enhancer
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

var _ TranscriptionService = (*Service)(nil)

// Service implements the TranscriptionService interface
type Service struct {
	repo     Repository
	audio    audiofiles.Repository
	storage  storage.FileStorage
	prober   DurationProber
	models   ModelProvider
	engine   Engine
	executor Executor
	enhancer Enhancer
	locks    *keylock.Map
	cfg      Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService creates a new transcription service
func NewService(deps Dependencies, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "base"
	}
	return &Service{
		repo:     deps.Repo,
		audio:    deps.AudioFiles,
		storage:  deps.Storage,
		prober:   deps.Prober,
		models:   deps.Models,
		engine:   deps.Engine,
		executor: deps.Executor,
		enhancer: deps.Enhancer,
		locks:    keylock.New(),
		cfg:      cfg,
		logger:   deps.Logger.Named("transcription"),
		metrics:  deps.Metrics,
	}
}

// Transcribe stores an upload, creates its AudioFile and runs recognition.
// The returned transcription is always terminal; recognition failures are
// recorded on it rather than returned.
func (s *Service) Transcribe(ctx context.Context, in TranscribeInput) (*models.Transcription, error) {
	modelName, err := s.resolveModel(in.ModelName)
	if err != nil {
		return nil, err
	}
	if in.Audio == nil {
		return nil, apperrors.ValidationError("file", "no audio provided")
	}
	if err := models.ValidateUpload(in.OriginalFilename, in.MimeType, in.SizeBytes, s.cfg.Limits); err != nil {
		return nil, apperrors.ValidationError("file", err.Error())
	}

	path, written, err := s.storage.Save(ctx, in.Audio, in.OriginalFilename)
	if err != nil {
		return nil, apperrors.FileSystemError("save", in.OriginalFilename, err)
	}

	if s.cfg.Limits.MaxSizeBytes > 0 && written > s.cfg.Limits.MaxSizeBytes {
		s.discard(path)
		return nil, apperrors.ValidationError("file", "file exceeds the maximum upload size")
	}

	audioFile := &models.AudioFile{
		ID:               uuid.NewString(),
		OriginalFilename: in.OriginalFilename,
		StoragePath:      path,
		FileSizeBytes:    written,
		MimeType:         in.MimeType,
		UploadedAt:       time.Now().UTC(),
	}

	if s.prober != nil {
		duration, err := s.prober.Duration(ctx, path)
		if err != nil {
			s.discard(path)
			return nil, apperrors.ValidationError("file", "unable to read audio: "+err.Error())
		}
		if err := models.ValidateDuration(duration, s.cfg.Limits); err != nil {
			s.discard(path)
			return nil, apperrors.ValidationError("file", err.Error())
		}
		audioFile.DurationSeconds = &duration
	}

	if err := s.audio.Create(ctx, audioFile); err != nil {
		s.discard(path)
		return nil, apperrors.PersistenceError("create audio file", err)
	}

	t := models.NewTranscriptionFor(uuid.NewString(), audioFile, modelName, in.Options)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperrors.PersistenceError("create transcription", err)
	}

	s.logger.Info("transcription created",
		zap.String("id", t.ID),
		zap.String("audio_file_id", audioFile.ID),
		zap.String("model", modelName),
		zap.Int64("bytes", written))

	return s.run(ctx, t, audioFile, in.Language)
}

// Retranscribe runs recognition on a stored audio file. A completed
// transcription with the same model is returned as is. Calls for the same
// audio file and model are serialized so that the second one finds the
// first one's result.
func (s *Service) Retranscribe(ctx context.Context, in RetranscribeInput) (*models.Transcription, error) {
	modelName, err := s.resolveModel(in.ModelName)
	if err != nil {
		return nil, err
	}

	audioFile, err := s.audio.GetByID(ctx, in.AudioFileID)
	if err != nil {
		return nil, apperrors.PersistenceError("get audio file", err)
	}
	if audioFile == nil {
		return nil, apperrors.NotFound("audio file", in.AudioFileID)
	}

	unlock, err := s.locks.Lock(ctx, audioFile.ID+"|"+modelName)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.repo.GetByAudioFileID(ctx, audioFile.ID)
	if err != nil {
		return nil, apperrors.PersistenceError("list transcriptions", err)
	}
	for i := range existing {
		if existing[i].ModelName == modelName && existing[i].Status == models.TranscriptionStatusCompleted {
			s.logger.Info("reusing completed transcription",
				zap.String("id", existing[i].ID),
				zap.String("audio_file_id", audioFile.ID),
				zap.String("model", modelName))
			return &existing[i], nil
		}
	}

	t := models.NewTranscriptionFor(uuid.NewString(), audioFile, modelName, in.Options)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperrors.PersistenceError("create transcription", err)
	}

	return s.run(ctx, t, audioFile, in.Language)
}

// run drives a pending transcription to a terminal state. It does not stop
// when the caller goes away.
func (s *Service) run(ctx context.Context, t *models.Transcription, audioFile *models.AudioFile, language string) (*models.Transcription, error) {
	ctx = context.WithoutCancel(ctx)

	handle, loadErr := s.models.GetOrLoad(ctx, t.ModelName)

	if err := t.MarkProcessing(); err != nil {
		return nil, apperrors.InvalidState(err)
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	if loadErr != nil {
		if !apperrors.Is(loadErr, apperrors.ErrCodeModelAcquisition) {
			loadErr = apperrors.ModelAcquisitionError(t.ModelName, loadErr)
		}
		return s.finish(ctx, t, nil, loadErr, 0)
	}

	var result *EngineResult
	start := time.Now()
	err := s.executor.Submit(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.engine.Transcribe(ctx, EngineRequest{
			AudioPath: audioFile.StoragePath,
			ModelName: handle.Name,
			ModelPath: handle.Path,
			Language:  language,
			VADFilter: t.VADFilterUsed,
		})
		return err
	})
	took := time.Since(start)
	if err == nil && result == nil {
		err = errors.New("engine returned no result")
	}
	if err != nil {
		err = apperrors.EngineError(t.ModelName, err)
	}

	return s.finish(ctx, t, result, err, took)
}

func (s *Service) finish(ctx context.Context, t *models.Transcription, result *EngineResult, runErr error, took time.Duration) (*models.Transcription, error) {
	if runErr != nil {
		if err := t.Fail(failureMessage(runErr)); err != nil {
			return nil, apperrors.InvalidState(err)
		}
		s.logger.Warn("transcription failed",
			zap.String("id", t.ID),
			zap.String("model", t.ModelName),
			zap.Error(runErr))
	} else {
		if err := t.Complete(result.Text, result.Language); err != nil {
			return nil, apperrors.InvalidState(err)
		}
		s.logger.Info("transcription completed",
			zap.String("id", t.ID),
			zap.String("model", t.ModelName),
			zap.Float64("speech_seconds", result.Duration),
			zap.Duration("took", took))
	}

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	s.metrics.RecordTranscription(t.ModelName, string(t.Status), took)

	if t.Status == models.TranscriptionStatusCompleted && t.EnableLLMEnhancement {
		s.enhance(ctx, t)
	}
	return t, nil
}

// save persists t. A transcription deleted while it was running stays
// deleted and is reported as not found.
func (s *Service) save(ctx context.Context, t *models.Transcription) error {
	err := s.repo.Update(ctx, t)
	if errors.Is(err, ErrDeleted) {
		s.logger.Info("transcription deleted while running", zap.String("id", t.ID))
		return apperrors.NotFound("transcription", t.ID)
	}
	if err != nil {
		return apperrors.PersistenceError("update transcription", err)
	}
	return nil
}

func (s *Service) enhance(ctx context.Context, t *models.Transcription) {
	if s.enhancer == nil {
		s.logger.Warn("llm enhancement requested but no enhancer is configured", zap.String("id", t.ID))
		return
	}
	if !t.CanBeEnhanced() {
		return
	}
	// The outcome is recorded on t
	if err := s.enhancer.EnhanceTranscription(ctx, t); err != nil {
		s.logger.Warn("automatic enhancement failed", zap.String("id", t.ID), zap.Error(err))
	}
}

// Get retrieves a transcription by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Transcription, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceError("get transcription", err)
	}
	if t == nil {
		return nil, apperrors.NotFound("transcription", id)
	}
	return t, nil
}

// List returns a page of transcriptions, newest first, and the total count
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Transcription, int64, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		return nil, 0, apperrors.ValidationError("limit", "must be between 1 and 100")
	}
	if offset < 0 {
		return nil, 0, apperrors.ValidationError("offset", "must not be negative")
	}

	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.PersistenceError("list transcriptions", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.PersistenceError("count transcriptions", err)
	}
	return items, total, nil
}

// ListByAudioFile returns every transcription of an audio file, oldest first
func (s *Service) ListByAudioFile(ctx context.Context, audioFileID string) ([]models.Transcription, error) {
	audioFile, err := s.audio.GetByID(ctx, audioFileID)
	if err != nil {
		return nil, apperrors.PersistenceError("get audio file", err)
	}
	if audioFile == nil {
		return nil, apperrors.NotFound("audio file", audioFileID)
	}

	items, err := s.repo.GetByAudioFileID(ctx, audioFileID)
	if err != nil {
		return nil, apperrors.PersistenceError("list transcriptions", err)
	}
	return items, nil
}

// AudioFile returns the audio file a transcription was made from
func (s *Service) AudioFile(ctx context.Context, transcriptionID string) (*models.AudioFile, error) {
	t, err := s.Get(ctx, transcriptionID)
	if err != nil {
		return nil, err
	}
	audioFile, err := s.audio.GetByID(ctx, t.AudioFileID)
	if err != nil {
		return nil, apperrors.PersistenceError("get audio file", err)
	}
	if audioFile == nil {
		return nil, apperrors.NotFound("audio file", t.AudioFileID)
	}
	return audioFile, nil
}

func (s *Service) resolveModel(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.cfg.DefaultModel
	}
	if s.cfg.KnownModel != nil && !s.cfg.KnownModel(name) {
		return "", apperrors.ValidationError("model", "unknown model '"+name+"'")
	}
	return name, nil
}

// discard removes a stored upload that will not get an AudioFile row
func (s *Service) discard(path string) {
	if err := s.storage.Delete(context.Background(), path); err != nil {
		s.logger.Warn("failed to remove rejected upload", zap.String("path", path), zap.Error(err))
	}
}

// failureMessage keeps the cause of an AppError readable for clients
func failureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Message + ": " + appErr.Cause.Error()
	}
	return err.Error()
}
