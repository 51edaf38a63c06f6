package audiofiles

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// RegisterRoutes registers audio file routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, body gin.HandlerFunc) {
	router.POST("/:id/transcriptions", body, PostTranscription(deps))
	router.GET("/:id/transcriptions", GetTranscriptions(deps))
	router.DELETE("/:id", Delete(deps))
}
