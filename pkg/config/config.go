package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		setDefaults()

		viper.SetEnvPrefix("TRANSCRIBE")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			// A missing file means defaults and env vars only
			var notFound viper.ConfigFileNotFoundError
			if !os.IsNotExist(err) && !errors.As(err, &notFound) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("storage.upload_dir") == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}

	if viper.GetInt64("storage.max_file_size_mb") <= 0 {
		viper.Set("storage.max_file_size_mb", 25)
	}

	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	if viper.GetDuration("llm.timeout") <= 0 {
		viper.Set("llm.timeout", 60*time.Second)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}

	if c.Storage.MaxFileSizeMB <= 0 {
		c.Storage.MaxFileSizeMB = 25
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 60 * time.Second
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Minute)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/transcriptions.db")
	viper.SetDefault("database.verbose", false)

	// Storage defaults
	viper.SetDefault("storage.upload_dir", "./uploads")
	viper.SetDefault("storage.trash_dir", "./uploads/.trash")
	viper.SetDefault("storage.max_file_size_mb", 25)

	// Audio defaults
	viper.SetDefault("audio.max_duration_seconds", 300)
	viper.SetDefault("audio.ffprobe_path", "ffprobe")
	viper.SetDefault("audio.probe_timeout", 30*time.Second)

	// Whisper defaults
	viper.SetDefault("whisper.cli_path", "whisper-cli")
	viper.SetDefault("whisper.model_dir", "./models")
	viper.SetDefault("whisper.default_model", "base")
	viper.SetDefault("whisper.threads", 4)
	viper.SetDefault("whisper.vad_model_path", "")
	viper.SetDefault("whisper.download_retries", 3)

	// LLM defaults
	viper.SetDefault("llm.base_url", "http://localhost:11434/v1")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.model", "llama3")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.timeout", 60*time.Second)

	// Processing defaults
	viper.SetDefault("processing.workers", 2)

	// Cleanup defaults
	viper.SetDefault("cleanup.interval", 1*time.Hour)
	viper.SetDefault("cleanup.trash_max_age", 1*time.Hour)
	viper.SetDefault("cleanup.remove_orphans", false)
	viper.SetDefault("cleanup.orphan_min_age", 24*time.Hour)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.rps", 10)
	viper.SetDefault("rate_limiting.burst", 20)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
}
