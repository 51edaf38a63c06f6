package models

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/api/types"
)

// keepAliveInterval is how often an idle stream gets a comment line
var keepAliveInterval = 30 * time.Second

// progressEvent is the SSE event name of every progress frame
const progressEvent = "progress"

// GetProgress streams model acquisition progress as server-sent events
// @Summary      Stream model download progress
// @Description  Sends one "progress" event with a JSON payload per progress change until the acquisition completes or fails.
// @Description  A model that is already loaded produces a single complete event. Subscribing never starts a download.
// @Tags         models
// @Produce      text/event-stream
// @Param        name path string true "Model name"
// @Success      200 {object} progress.Event
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/models/{name}/progress [get]
func GetProgress(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name := c.Param("name")

		events, err := deps.ModelCache.Subscribe(ctx, name)
		if err != nil {
			types.SendError(c, err)
			return
		}

		// long-lived stream, not subject to the server write timeout
		rc := http.NewResponseController(c.Writer)
		_ = rc.SetWriteDeadline(time.Time{})

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				c.SSEvent(progressEvent, event)
				if c.IsAborted() {
					deps.Log().Debug("progress stream closed", zap.String("model", name), zap.Error(c.Errors.Last()))
					return
				}
				c.Writer.Flush()
			case <-ticker.C:
				if _, err := io.WriteString(c.Writer, ": keepalive\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			case <-ctx.Done():
				return
			}
		}
	}
}
