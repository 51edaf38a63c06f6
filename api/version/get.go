package version

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// Get handles version requests
// @Summary      Service version
// @Tags         meta
// @Produce      json
// @Success      200 {object} types.VersionResponse
// @Router       /version [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	version := "dev"
	if deps != nil && deps.Version != "" {
		version = deps.Version
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, types.VersionResponse{
			Name:        "Transcribe API",
			Version:     version,
			Description: "Speech to text with whisper models and optional LLM enhancement",
			Status:      "running",
		})
	}
}
