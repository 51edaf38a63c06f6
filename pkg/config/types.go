package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Audio        AudioConfig        `mapstructure:"audio"`
	Whisper      WhisperConfig      `mapstructure:"whisper"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Processing   ProcessingConfig   `mapstructure:"processing"`
	Cleanup      CleanupConfig      `mapstructure:"cleanup"`
	RateLimiting RateLimitConfig    `mapstructure:"rate_limiting"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// StorageConfig contains uploaded audio storage settings
type StorageConfig struct {
	UploadDir     string `mapstructure:"upload_dir"`
	TrashDir      string `mapstructure:"trash_dir"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// AudioConfig contains upload validation settings
type AudioConfig struct {
	MaxDurationSeconds float64       `mapstructure:"max_duration_seconds"`
	FFprobePath        string        `mapstructure:"ffprobe_path"`
	ProbeTimeout       time.Duration `mapstructure:"probe_timeout"`
}

// WhisperConfig contains speech recognition settings
type WhisperConfig struct {
	CLIPath         string `mapstructure:"cli_path"`
	ModelDir        string `mapstructure:"model_dir"`
	DefaultModel    string `mapstructure:"default_model"`
	Threads         int    `mapstructure:"threads"`
	VADModelPath    string `mapstructure:"vad_model_path"`
	DownloadRetries int    `mapstructure:"download_retries"`
}

// LLMConfig contains the OpenAI compatible completion service settings
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ProcessingConfig contains inference worker settings
type ProcessingConfig struct {
	Workers int `mapstructure:"workers"`
}

// CleanupConfig contains maintenance settings
type CleanupConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	TrashMaxAge   time.Duration `mapstructure:"trash_max_age"`
	RemoveOrphans bool          `mapstructure:"remove_orphans"`
	OrphanMinAge  time.Duration `mapstructure:"orphan_min_age"`
}

// RateLimitConfig contains per-client rate limiting settings
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	RPS     int  `mapstructure:"rps"`
	Burst   int  `mapstructure:"burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
