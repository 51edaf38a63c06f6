package transcriptions

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

// GetAudio streams the audio a transcription was made from
// @Summary      Download transcription audio
// @Tags         transcriptions
// @Produce      octet-stream
// @Param        id path string true "Transcription ID"
// @Success      200 {file} binary
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/transcriptions/{id}/audio [get]
func GetAudio(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		audioFile, err := deps.TranscriptionService.AudioFile(ctx, c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}

		reader, err := deps.Storage.Open(ctx, audioFile.StoragePath)
		if err != nil {
			types.SendError(c, apperrors.NotFound("audio", audioFile.ID))
			return
		}
		defer reader.Close()

		mimeType := audioFile.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		c.DataFromReader(http.StatusOK, audioFile.FileSizeBytes, mimeType, reader, map[string]string{
			"Content-Disposition": fmt.Sprintf("inline; filename=%q", audioFile.OriginalFilename),
		})
	}
}
