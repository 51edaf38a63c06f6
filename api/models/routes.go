package models

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// RegisterRoutes registers model catalog and progress routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/available", GetAvailable(deps))
	router.GET("/:name/status", GetStatus(deps))
	router.GET("/:name/progress", GetProgress(deps))
}
