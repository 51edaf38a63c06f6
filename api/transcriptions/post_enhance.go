package transcriptions

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// PostEnhance runs LLM enhancement on a completed transcription
// @Summary      Enhance a transcription
// @Description  Runs the LLM over the transcript. A failed enhancement is recorded on the transcription and can be retried.
// @Tags         transcriptions
// @Produce      json
// @Param        id path string true "Transcription ID"
// @Success      200 {object} models.Transcription
// @Failure      400 {object} types.ErrorResponse "Transcription cannot be enhanced"
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/transcriptions/{id}/enhance [post]
func PostEnhance(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.EnhancementService == nil {
			types.SendInternalError(c, "LLM enhancement is not configured")
			return
		}

		t, err := deps.EnhancementService.Enhance(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, t)
	}
}
