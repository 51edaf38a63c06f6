package types

// RetranscribeRequest is the body of POST /audio-files/{id}/transcriptions
type RetranscribeRequest struct {
	Model                string `json:"model"`
	Language             string `json:"language"`
	EnableLLMEnhancement bool   `json:"enable_llm_enhancement"`
	EnableTashkeel       bool   `json:"enable_tashkeel"`
	VADFilter            bool   `json:"vad_filter"`
}
