package transcriptions

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
)

// GetAll lists transcriptions, newest first
// @Summary      List transcription history
// @Tags         transcriptions
// @Produce      json
// @Param        limit  query int false "Page size" minimum(1) maximum(100) default(100)
// @Param        offset query int false "Items to skip" minimum(0) default(0)
// @Success      200 {object} types.TranscriptionListResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/transcriptions [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := types.ParseIntQuery(c, "limit", transcription.DefaultListLimit)
		if !ok {
			return
		}
		offset, ok := types.ParseIntQuery(c, "offset", 0)
		if !ok {
			return
		}
		if limit < 1 || limit > transcription.MaxListLimit {
			types.SendBadRequest(c, "limit must be between 1 and 100")
			return
		}

		items, total, err := deps.TranscriptionService.List(c.Request.Context(), limit, offset)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.TranscriptionListResponse{
			Items:  items,
			Total:  total,
			Limit:  limit,
			Offset: offset,
		})
	}
}
