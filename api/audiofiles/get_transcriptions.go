package audiofiles

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/transcribe-api/api/types"
)

// GetTranscriptions lists every transcription of an audio file
// @Summary      List transcriptions of an audio file
// @Tags         audio-files
// @Produce      json
// @Param        id path string true "Audio file ID"
// @Success      200 {object} types.AudioFileTranscriptionsResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/audio-files/{id}/transcriptions [get]
func GetTranscriptions(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		items, err := deps.TranscriptionService.ListByAudioFile(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.AudioFileTranscriptionsResponse{
			AudioFileID:    id,
			Transcriptions: items,
			Count:          len(items),
		})
	}
}
