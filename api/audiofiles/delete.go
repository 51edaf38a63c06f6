package audiofiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// Delete removes an audio file, its transcriptions and the stored audio
// @Summary      Delete an audio file
// @Tags         audio-files
// @Param        id path string true "Audio file ID"
// @Success      204
// @Failure      404 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse "Nothing was deleted"
// @Router       /api/v1/audio-files/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.DeletionService.DeleteAudioFile(c.Request.Context(), c.Param("id")); err != nil {
			types.SendError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
