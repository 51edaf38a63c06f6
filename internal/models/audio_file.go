package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SupportedAudioTypes lists the accepted upload mime types
var SupportedAudioTypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/x-wav",
	"audio/wave",
	"audio/mp4",
	"audio/x-m4a",
	"audio/m4a",
	"audio/ogg",
	"audio/flac",
	"audio/x-flac",
	"audio/webm",
}

// AudioFile is an uploaded audio asset. It is never modified after creation.
type AudioFile struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OriginalFilename string    `gorm:"not null" json:"original_filename"`
	StoragePath      string    `gorm:"not null;uniqueIndex" json:"-"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	MimeType         string    `json:"mime_type"`
	DurationSeconds  *float64  `json:"duration_seconds"`
	UploadedAt       time.Time `gorm:"not null;index" json:"uploaded_at"`
}

// TableName specifies the table name for AudioFile
func (AudioFile) TableName() string {
	return "audio_files"
}

// UploadLimits bounds what an upload may contain
type UploadLimits struct {
	MaxSizeBytes       int64
	MaxDurationSeconds float64
}

// ValidateUpload checks the metadata of an upload before it is stored
func ValidateUpload(filename, mimeType string, size int64, limits UploadLimits) error {
	if !IsValidFilename(filename) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	if !IsSupportedAudioType(mimeType) {
		return fmt.Errorf("unsupported file type: %s. Supported types: %s", mimeType, strings.Join(SupportedAudioTypes, ", "))
	}
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if limits.MaxSizeBytes > 0 && size > limits.MaxSizeBytes {
		return fmt.Errorf("file too large: %.1fMB (max %.0fMB)", float64(size)/(1024*1024), float64(limits.MaxSizeBytes)/(1024*1024))
	}
	return nil
}

// ValidateDuration checks a probed duration against the configured maximum
func ValidateDuration(seconds float64, limits UploadLimits) error {
	if seconds < 0 {
		return fmt.Errorf("invalid duration %.2fs", seconds)
	}
	if limits.MaxDurationSeconds > 0 && seconds > limits.MaxDurationSeconds {
		return fmt.Errorf("audio too long: %.1fs (max %.0fs)", seconds, limits.MaxDurationSeconds)
	}
	return nil
}

// IsSupportedAudioType reports whether mimeType is accepted, ignoring parameters
func IsSupportedAudioType(mimeType string) bool {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	for _, t := range SupportedAudioTypes {
		if t == base {
			return true
		}
	}
	return false
}

// IsValidFilename rejects empty names and anything carrying a path
func IsValidFilename(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return false
	}
	return !strings.ContainsRune(name, 0)
}
