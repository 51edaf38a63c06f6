package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/database"
	"github.com/killallgit/transcribe-api/internal/engine/whisper"
	"github.com/killallgit/transcribe-api/internal/llm"
	"github.com/killallgit/transcribe-api/internal/metrics"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/audiofiles"
	"github.com/killallgit/transcribe-api/internal/services/cleanup"
	"github.com/killallgit/transcribe-api/internal/services/deletion"
	"github.com/killallgit/transcribe-api/internal/services/enhancement"
	"github.com/killallgit/transcribe-api/internal/services/modelcache"
	"github.com/killallgit/transcribe-api/internal/services/progress"
	"github.com/killallgit/transcribe-api/internal/services/storage"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
	"github.com/killallgit/transcribe-api/internal/services/workers"
	"github.com/killallgit/transcribe-api/pkg/config"
	"github.com/killallgit/transcribe-api/pkg/download"
	"github.com/killallgit/transcribe-api/pkg/ffmpeg"
)

// application is every long lived component of the server
type application struct {
	cfg    *config.Config
	logger *zap.Logger

	db       *database.DB
	storage  *storage.FilesystemStorage
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	audioFiles     audiofiles.Repository
	transcriptRepo transcription.Repository

	loader         *whisper.Loader
	engine         *whisper.CLIEngine
	prober         *ffmpeg.FFmpeg
	models         *modelcache.Cache
	pool           *workers.WorkerPool
	transcriptions *transcription.Service
	enhancer       *enhancement.Service
	deleter        *deletion.Coordinator
	cleanup        *cleanup.Service
}

// newModelLoader returns a loader that downloads into the configured model
// directory. showProgress renders a bar when stderr is a terminal.
func newModelLoader(cfg *config.Config, logger *zap.Logger, showProgress bool) *whisper.Loader {
	opts := download.DefaultOptions()
	if cfg.Whisper.DownloadRetries > 0 {
		opts.Retries = cfg.Whisper.DownloadRetries
	}
	opts.ShowProgress = showProgress
	opts.Logger = logger.Named("download")
	return whisper.NewLoader(cfg.Whisper.ModelDir, download.NewDownloader(opts), logger.Named("models"))
}

// newApplication wires the components from configuration. Close releases
// them.
func newApplication(logger *zap.Logger) (*application, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &application{cfg: cfg, logger: logger}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if app.metrics, err = metrics.New(app.registry); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	if app.db, err = database.InitializeWithMigrations(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if app.storage, err = storage.NewFilesystemStorage(cfg.Storage.UploadDir, cfg.Storage.TrashDir); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.audioFiles = audiofiles.NewRepository(app.db.DB)
	app.transcriptRepo = transcription.NewRepository(app.db.DB)

	app.prober = ffmpeg.New(cfg.Audio.FFprobePath, cfg.Audio.ProbeTimeout)
	if err := app.prober.ValidateBinaries(); err != nil {
		logger.Warn("ffprobe unavailable, uploads will be rejected", zap.Error(err))
	}

	app.engine = whisper.NewCLIEngine(whisper.CLIEngineOptions{
		Executable:   cfg.Whisper.CLIPath,
		Threads:      cfg.Whisper.Threads,
		VADModelPath: cfg.Whisper.VADModelPath,
		Logger:       logger.Named("engine"),
	})
	if err := app.engine.Validate(); err != nil {
		logger.Warn("whisper engine unavailable", zap.Error(err))
	}

	app.loader = newModelLoader(cfg, logger, false)
	tracker := progress.NewTracker(progress.DefaultRetention, logger.Named("progress"), app.metrics)
	app.models = modelcache.New(app.loader, tracker, modelcache.Options{
		Known:   whisper.IsKnownModel,
		Logger:  logger.Named("modelcache"),
		Metrics: app.metrics,
	})

	app.pool = workers.NewWorkerPool(cfg.Processing.Workers, logger.Named("workers"))

	llmClient := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		Logger:      logger.Named("llm"),
	})
	app.enhancer = enhancement.NewService(app.transcriptRepo, llmClient, cfg.LLM.Timeout, logger, app.metrics)

	app.transcriptions = transcription.NewService(transcription.Dependencies{
		Repo:       app.transcriptRepo,
		AudioFiles: app.audioFiles,
		Storage:    app.storage,
		Prober:     app.prober,
		Models:     app.models,
		Engine:     app.engine,
		Executor:   app.pool,
		Enhancer:   app.enhancer,
		Logger:     logger,
		Metrics:    app.metrics,
	}, transcription.Config{
		DefaultModel: cfg.Whisper.DefaultModel,
		Limits: models.UploadLimits{
			MaxSizeBytes:       cfg.Storage.MaxFileSizeMB << 20,
			MaxDurationSeconds: cfg.Audio.MaxDurationSeconds,
		},
		KnownModel: whisper.IsKnownModel,
	})

	app.deleter = deletion.NewCoordinator(app.db.DB, app.audioFiles, app.transcriptRepo, app.storage, logger, app.metrics)

	app.cleanup = cleanup.NewService(app.audioFiles, app.deleter, app.storage, cleanup.Options{
		Interval:      cfg.Cleanup.Interval,
		TrashMaxAge:   cfg.Cleanup.TrashMaxAge,
		RemoveOrphans: cfg.Cleanup.RemoveOrphans,
		OrphanMinAge:  cfg.Cleanup.OrphanMinAge,
		ModelDir:      cfg.Whisper.ModelDir,
	}, logger)

	return app, nil
}

// start launches the background workers
func (a *application) start(ctx context.Context) error {
	if err := a.pool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	a.cleanup.Start(ctx)
	return nil
}

// Close stops background work and closes the database
func (a *application) Close() error {
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.pool != nil {
		a.pool.Stop()
	}

	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
