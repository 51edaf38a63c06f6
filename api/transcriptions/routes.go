package transcriptions

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// RegisterRoutes registers transcription routes. upload wraps the multipart
// upload endpoint and body wraps the remaining endpoints that read a body.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, upload, body gin.HandlerFunc) {
	router.POST("", upload, Post(deps))
	router.GET("", GetAll(deps))
	router.GET("/:id", GetByID(deps))
	router.DELETE("/:id", Delete(deps))
	router.POST("/:id/enhance", body, PostEnhance(deps))
	router.GET("/:id/audio", GetAudio(deps))
}
