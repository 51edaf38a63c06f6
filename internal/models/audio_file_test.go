package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUpload(t *testing.T) {
	limits := UploadLimits{MaxSizeBytes: 25 * 1024 * 1024, MaxDurationSeconds: 30}

	tests := []struct {
		name     string
		filename string
		mimeType string
		size     int64
		wantErr  string
	}{
		{name: "valid mp3", filename: "memo.mp3", mimeType: "audio/mpeg", size: 1024},
		{name: "mime with parameters", filename: "memo.webm", mimeType: "audio/webm;codecs=opus", size: 1024},
		{name: "unsupported type", filename: "memo.txt", mimeType: "text/plain", size: 1024, wantErr: "unsupported file type"},
		{name: "path in filename", filename: "../memo.mp3", mimeType: "audio/mpeg", size: 1024, wantErr: "invalid filename"},
		{name: "empty filename", filename: " ", mimeType: "audio/mpeg", size: 1024, wantErr: "invalid filename"},
		{name: "empty file", filename: "memo.mp3", mimeType: "audio/mpeg", size: 0, wantErr: "file is empty"},
		{name: "too large", filename: "memo.mp3", mimeType: "audio/mpeg", size: 26 * 1024 * 1024, wantErr: "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.mimeType, tt.size, limits)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateDuration(t *testing.T) {
	limits := UploadLimits{MaxDurationSeconds: 30}

	assert.NoError(t, ValidateDuration(12.3, limits))
	assert.NoError(t, ValidateDuration(30, limits))
	assert.ErrorContains(t, ValidateDuration(30.5, limits), "audio too long")
	assert.Error(t, ValidateDuration(-1, limits))
	assert.NoError(t, ValidateDuration(3600, UploadLimits{}))
}
