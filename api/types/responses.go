package types

import (
	"github.com/killallgit/transcribe-api/internal/engine/whisper"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/modelcache"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// TranscriptionListResponse is a page of the transcription history
type TranscriptionListResponse struct {
	Items  []models.Transcription `json:"items"`
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// AudioFileTranscriptionsResponse lists the transcriptions of one audio file
type AudioFileTranscriptionsResponse struct {
	AudioFileID    string                 `json:"audio_file_id"`
	Transcriptions []models.Transcription `json:"transcriptions"`
	Count          int                    `json:"count"`
}

// AvailableModel is a registry entry with its local state
type AvailableModel struct {
	whisper.Available
	Cached bool `json:"cached"`
}

// AvailableModelsResponse lists every model that can be requested
type AvailableModelsResponse struct {
	Models       []AvailableModel `json:"models"`
	DefaultModel string           `json:"default_model"`
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Database  map[string]string `json:"database"`
}

// VersionResponse for the version endpoint
type VersionResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ModelStatusResponse reports the cache and download state of one model
type ModelStatusResponse struct {
	modelcache.Status
	Downloaded bool `json:"downloaded"`
}
