package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/killallgit/transcribe-api/api/types"
)

// Options configures the HTTP server
type Options struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxHeaderBytes int

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// MetricsPath exposes Registry when both are set
	MetricsPath string
	Registry    *prometheus.Registry
}

// Server represents the HTTP server
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	rateLimiter *RateLimiter
	opts        Options

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server
func NewServer(opts Options, deps *types.Dependencies) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		// recognition runs inside the request
		opts.WriteTimeout = 10 * time.Minute
	}
	if opts.MaxHeaderBytes <= 0 {
		opts.MaxHeaderBytes = 1 << 20
	}
	if deps == nil {
		deps = &types.Dependencies{}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	server := &Server{
		engine:       engine,
		opts:         opts,
		dependencies: deps,
		httpServer: &http.Server{
			Addr:           opts.Address,
			Handler:        engine,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: opts.MaxHeaderBytes,
		},
	}
	if opts.RateLimitEnabled {
		server.rateLimiter = NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}

	return server
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	s.setupMiddleware()
	return RegisterRoutes(s.engine, s.dependencies, s.opts, s.rateLimiter)
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	s.engine.Use(RequestLogger(s.dependencies.Log().Named("http")))
	s.engine.Use(CORS())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
