package transcriptions

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/api/types"
	"github.com/killallgit/transcribe-api/internal/models"
	"github.com/killallgit/transcribe-api/internal/services/transcription"
)

// Post transcribes an uploaded audio file
// @Summary      Transcribe an audio upload
// @Description  Stores the uploaded audio and runs speech recognition on it. The request returns once the
// @Description  transcription is completed or failed; recognition errors are reported in the transcription itself.
// @Tags         transcriptions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file                    formData file   true  "Audio file"
// @Param        model                   query    string false "Whisper model name" default(base)
// @Param        language                query    string false "Language hint, e.g. en or ar"
// @Param        enable_llm_enhancement  query    bool   false "Run LLM enhancement after transcription"
// @Param        enable_tashkeel         query    bool   false "Add Arabic diacritics during enhancement"
// @Param        vad_filter              query    bool   false "Skip silence with voice activity detection"
// @Success      201 {object} models.Transcription
// @Failure      400 {object} types.ErrorResponse "Invalid upload or unknown model"
// @Failure      500 {object} types.ErrorResponse "Storage or database failure"
// @Router       /api/v1/transcriptions [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, ok := parseOptions(c)
		if !ok {
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			types.SendBadRequest(c, "No audio file uploaded")
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			types.SendBadRequest(c, "Unable to read uploaded file")
			return
		}
		defer file.Close()

		t, err := deps.TranscriptionService.Transcribe(c.Request.Context(), transcription.TranscribeInput{
			Audio:            file,
			OriginalFilename: fileHeader.Filename,
			MimeType:         fileHeader.Header.Get("Content-Type"),
			SizeBytes:        fileHeader.Size,
			ModelName:        c.Query("model"),
			Language:         c.Query("language"),
			Options:          opts,
		})
		if err != nil {
			deps.Log().Debug("transcription rejected", zap.String("filename", fileHeader.Filename), zap.Error(err))
			types.SendError(c, err)
			return
		}

		types.SendCreated(c, t)
	}
}

func parseOptions(c *gin.Context) (models.TranscriptionOptions, bool) {
	var opts models.TranscriptionOptions
	var ok bool

	if opts.EnableLLMEnhancement, ok = types.ParseBoolQuery(c, "enable_llm_enhancement"); !ok {
		return opts, false
	}
	if opts.EnableTashkeel, ok = types.ParseBoolQuery(c, "enable_tashkeel"); !ok {
		return opts, false
	}
	if opts.VADFilter, ok = types.ParseBoolQuery(c, "vad_filter"); !ok {
		return opts, false
	}
	return opts, true
}
