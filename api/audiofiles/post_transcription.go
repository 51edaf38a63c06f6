package audiofiles

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
)

// PostTranscription transcribes a stored audio file again, usually with
// another model
// @Summary      Retranscribe an audio file
// @Description  Returns the existing transcription when one with the same model already completed.
// @Tags         audio-files
// @Accept       json
// @Produce      json
// @Param        id      path string                     true  "Audio file ID"
// @Param        request body types.RetranscribeRequest false "Model and options"
// @Success      201 {object} models.Transcription
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/audio-files/{id}/transcriptions [post]
func PostTranscription(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RetranscribeRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				types.SendBadRequest(c, "Invalid request body")
				return
			}
		}

		t, err := deps.TranscriptionService.Retranscribe(c.Request.Context(), transcription.RetranscribeInput{
			AudioFileID: c.Param("id"),
			ModelName:   req.Model,
			Language:    req.Language,
			Options: models.TranscriptionOptions{
				EnableLLMEnhancement: req.EnableLLMEnhancement,
				EnableTashkeel:       req.EnableTashkeel,
				VADFilter:            req.VADFilter,
			},
		})
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendCreated(c, t)
	}
}
