package models

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
	"github.com/killallgit/transcribe-api/internal/engine/whisper"
)

// GetAvailable lists the models that can be requested
// @Summary      List available models
// @Tags         models
// @Produce      json
// @Success      200 {object} types.AvailableModelsResponse
// @Router       /api/v1/models/available [get]
func GetAvailable(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		available := whisper.ListAvailable(deps.ModelDir)

		out := make([]types.AvailableModel, 0, len(available))
		for _, a := range available {
			out = append(out, types.AvailableModel{
				Available: a,
				Cached:    deps.ModelCache != nil && deps.ModelCache.IsCached(a.Name),
			})
		}

		def := deps.DefaultModel
		if def == "" {
			def = whisper.DefaultModel
		}
		types.SendSuccess(c, types.AvailableModelsResponse{
			Models:       out,
			DefaultModel: def,
		})
	}
}
