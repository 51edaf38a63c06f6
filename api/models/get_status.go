package models

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
	"github.com/killallgit/transcribe-api/internal/engine/whisper"
	apperrors "github.com/killallgit/transcribe-api/pkg/errors"
)

// GetStatus reports whether a model is loaded or being acquired
// @Summary      Get model status
// @Tags         models
// @Produce      json
// @Param        name path string true "Model name"
// @Success      200 {object} types.ModelStatusResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/models/{name}/status [get]
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		model, ok := whisper.LookupModel(name)
		if !ok {
			types.SendError(c, apperrors.NotFound("model", name))
			return
		}

		resp := types.ModelStatusResponse{
			Status:     deps.ModelCache.Status(model.Name),
			Downloaded: whisper.IsDownloaded(deps.ModelDir, model.Name),
		}
		types.SendSuccess(c, resp)
	}
}
