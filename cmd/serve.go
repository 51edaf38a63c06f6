package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/api"
	"github.com/killallgit/transcribe-api/api/types"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Transcribe API server with the configured settings.

Settings come from ./config/settings.yaml and TRANSCRIBE_* environment
variables, e.g. TRANSCRIBE_SERVER_PORT=9090.

Example:
  transcribe-api serve
  transcribe-api serve --port 9090
  transcribe-api serve --host 127.0.0.1 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := newApplication(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", zap.Error(err))
		}
	}()

	if serverHost == "" {
		serverHost = app.cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = app.cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.start(ctx); err != nil {
		return err
	}

	if app.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := api.Options{
		Address:          fmt.Sprintf("%s:%d", serverHost, serverPort),
		ReadTimeout:      app.cfg.Server.ReadTimeout,
		WriteTimeout:     app.cfg.Server.WriteTimeout,
		MaxHeaderBytes:   app.cfg.Server.MaxHeaderBytes,
		RateLimitEnabled: app.cfg.RateLimiting.Enabled,
		RateLimitRPS:     float64(app.cfg.RateLimiting.RPS),
		RateLimitBurst:   app.cfg.RateLimiting.Burst,
	}
	if app.cfg.Metrics.Enabled {
		opts.MetricsPath = app.cfg.Metrics.Path
		opts.Registry = app.registry
	}

	server := api.NewServer(opts, &types.Dependencies{
		DB:                   app.db,
		TranscriptionService: app.transcriptions,
		EnhancementService:   app.enhancer,
		DeletionService:      app.deleter,
		ModelCache:           app.models,
		Storage:              app.storage,
		Logger:               logger,
		ModelDir:             app.cfg.Whisper.ModelDir,
		DefaultModel:         app.cfg.Whisper.DefaultModel,
		MaxUploadBytes:       app.cfg.Storage.MaxFileSizeMB << 20,
		Version:              Version,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	logger.Info("server is ready to handle requests",
		zap.String("address", opts.Address),
		zap.String("default_model", app.cfg.Whisper.DefaultModel),
		zap.Int("workers", app.pool.Size()))

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case runErr = <-serverErr:
		logger.Error("server stopped unexpectedly", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server gracefully stopped")
	return runErr
}
