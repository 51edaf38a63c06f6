package transcriptions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// Delete removes a single transcription; its audio file is kept
// @Summary      Delete a transcription
// @Tags         transcriptions
// @Param        id path string true "Transcription ID"
// @Success      204
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/transcriptions/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.DeletionService.DeleteTranscription(c.Request.Context(), c.Param("id")); err != nil {
			types.SendError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
