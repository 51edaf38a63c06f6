package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/transcribe-api/api/audiofiles"
	"github.com/killallgit/transcribe-api/api/health"
	"github.com/killallgit/transcribe-api/api/models"
	"github.com/killallgit/transcribe-api/api/transcriptions"
	"github.com/killallgit/transcribe-api/api/types"
	"github.com/killallgit/transcribe-api/api/version"
	_ "github.com/killallgit/transcribe-api/docs/swagger"
)

// multipartOverhead is added to the upload limit for form boundaries and fields
const multipartOverhead = 1024 * 1024

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, opts Options, limiter *RateLimiter) error {
	if deps == nil {
		return fmt.Errorf("dependencies are required")
	}

	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	if opts.MetricsPath != "" && opts.Registry != nil {
		engine.GET(opts.MetricsPath, gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	// Swagger documentation
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.NoRoute(NotFoundHandler())

	if deps.TranscriptionService == nil || deps.DeletionService == nil || deps.ModelCache == nil {
		return fmt.Errorf("transcription, deletion and model services are required")
	}

	v1 := engine.Group("/api/v1")
	if limiter != nil {
		v1.Use(limiter.Middleware())
	}

	uploadLimit := deps.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = 25 * 1024 * 1024
	}
	upload := RequestSizeLimit(uploadLimit + multipartOverhead)
	body := RequestSizeLimit(DefaultBodyLimit)

	transcriptions.RegisterRoutes(v1.Group("/transcriptions"), deps, upload, body)
	audiofiles.RegisterRoutes(v1.Group("/audio-files"), deps, body)
	models.RegisterRoutes(v1.Group("/models"), deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
