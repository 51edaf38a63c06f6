package transcriptions

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// GetByID returns one transcription
// @Summary      Get a transcription
// @Tags         transcriptions
// @Produce      json
// @Param        id path string true "Transcription ID"
// @Success      200 {object} models.Transcription
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/transcriptions/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := deps.TranscriptionService.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, t)
	}
}
