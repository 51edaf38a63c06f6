package models

import (
	"strings"
	"time"
)

// TranscriptionStatus represents the lifecycle state of a recognition attempt
type TranscriptionStatus string

const (
	TranscriptionStatusPending    TranscriptionStatus = "pending"
	TranscriptionStatusProcessing TranscriptionStatus = "processing"
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"
	TranscriptionStatusFailed     TranscriptionStatus = "failed"
)

// CanTransitionTo reports whether next is a valid successor of s.
// The only valid path is pending -> processing -> {completed|failed}.
func (s TranscriptionStatus) CanTransitionTo(next TranscriptionStatus) bool {
	switch s {
	case TranscriptionStatusPending:
		return next == TranscriptionStatusProcessing
	case TranscriptionStatusProcessing:
		return next == TranscriptionStatusCompleted || next == TranscriptionStatusFailed
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible
func (s TranscriptionStatus) IsTerminal() bool {
	return s == TranscriptionStatusCompleted || s == TranscriptionStatusFailed
}

// EnhancementStatus is the state of the optional LLM enhancement.
// The zero value means no enhancement has been attempted.
type EnhancementStatus string

const (
	EnhancementStatusAbsent     EnhancementStatus = ""
	EnhancementStatusProcessing EnhancementStatus = "processing"
	EnhancementStatusCompleted  EnhancementStatus = "completed"
	EnhancementStatusFailed     EnhancementStatus = "failed"
)

// CanTransitionTo reports whether next is a valid successor of s.
// Failed may restart, completed is final.
func (s EnhancementStatus) CanTransitionTo(next EnhancementStatus) bool {
	switch s {
	case EnhancementStatusAbsent, EnhancementStatusFailed:
		return next == EnhancementStatusProcessing
	case EnhancementStatusProcessing:
		return next == EnhancementStatusCompleted || next == EnhancementStatusFailed
	default:
		return false
	}
}

// NoSpeechText is stored when the engine returns an empty transcript
const NoSpeechText = "(No speech detected)"

// Transcription is one (audio file, model) recognition attempt
type Transcription struct {
	ID              string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AudioFileID     string              `gorm:"type:varchar(36);not null;index" json:"audio_file_id"`
	ModelName       string              `gorm:"not null;index" json:"model"`
	Text            *string             `gorm:"type:text" json:"text"`
	Language        *string             `json:"language"`
	Status          TranscriptionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	DurationSeconds *float64            `json:"duration_seconds"`
	ErrorMessage    *string             `gorm:"type:text" json:"error_message"`
	CreatedAt       time.Time           `json:"created_at"`
	CompletedAt     *time.Time          `json:"completed_at"`

	EnableLLMEnhancement     bool              `gorm:"not null;default:false" json:"enable_llm_enhancement"`
	EnableTashkeel           bool              `gorm:"not null;default:false" json:"enable_tashkeel"`
	EnhancedText             *string           `gorm:"type:text" json:"enhanced_text"`
	LLMProcessingTimeSeconds *float64          `gorm:"column:llm_processing_time_seconds" json:"llm_processing_time_seconds"`
	LLMEnhancementStatus     EnhancementStatus `gorm:"column:llm_enhancement_status;type:varchar(20);not null;default:''" json:"llm_enhancement_status,omitempty"`
	LLMErrorMessage          *string           `gorm:"column:llm_error_message;type:text" json:"llm_error_message"`

	VADFilterUsed bool `gorm:"column:vad_filter_used;not null;default:false" json:"vad_filter_used"`
}

// TableName specifies the table name for Transcription
func (Transcription) TableName() string {
	return "transcriptions"
}

// TranscriptionOptions are the caller supplied flags of a new attempt
type TranscriptionOptions struct {
	EnableLLMEnhancement bool
	EnableTashkeel       bool
	VADFilter            bool
}

// NewTranscription creates a pending transcription for an audio file
func NewTranscription(id, audioFileID, modelName string, opts TranscriptionOptions) *Transcription {
	return &Transcription{
		ID:                   id,
		AudioFileID:          audioFileID,
		ModelName:            modelName,
		Status:               TranscriptionStatusPending,
		CreatedAt:            time.Now().UTC(),
		EnableLLMEnhancement: opts.EnableLLMEnhancement,
		EnableTashkeel:       opts.EnableTashkeel,
		VADFilterUsed:        opts.VADFilter,
	}
}

// NewTranscriptionFor creates a pending transcription of audioFile. The
// duration is the probed length of the stored audio, not what the engine
// reports.
func NewTranscriptionFor(id string, audioFile *AudioFile, modelName string, opts TranscriptionOptions) *Transcription {
	t := NewTranscription(id, audioFile.ID, modelName, opts)
	if audioFile.DurationSeconds != nil {
		d := *audioFile.DurationSeconds
		t.DurationSeconds = &d
	}
	return t
}

func (t *Transcription) advance(next TranscriptionStatus) error {
	if !t.Status.CanTransitionTo(next) {
		return &InvalidStateError{Entity: "transcription", From: string(t.Status), To: string(next)}
	}
	t.Status = next
	return nil
}

// MarkProcessing moves a pending transcription into processing
func (t *Transcription) MarkProcessing() error {
	return t.advance(TranscriptionStatusProcessing)
}

// Complete records the recognition result
func (t *Transcription) Complete(text, language string) error {
	if err := t.advance(TranscriptionStatusCompleted); err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = NoSpeechText
	}
	t.Text = &text

	if language != "" {
		t.Language = &language
	}
	now := time.Now().UTC()
	t.CompletedAt = &now
	t.ErrorMessage = nil
	return nil
}

// Fail records a recognition failure
func (t *Transcription) Fail(message string) error {
	if err := t.advance(TranscriptionStatusFailed); err != nil {
		return err
	}

	if strings.TrimSpace(message) == "" {
		message = "unknown error"
	}
	t.ErrorMessage = &message

	now := time.Now().UTC()
	t.CompletedAt = &now
	return nil
}

// HasText reports whether a non-empty transcript is present
func (t *Transcription) HasText() bool {
	return t.Text != nil && strings.TrimSpace(*t.Text) != ""
}

// CanBeEnhanced reports whether an LLM enhancement may start now
func (t *Transcription) CanBeEnhanced() bool {
	return len(t.EnhancementBlockers()) == 0
}

// EnhancementBlockers lists every reason the transcription cannot be enhanced
func (t *Transcription) EnhancementBlockers() []string {
	var reasons []string
	if !t.EnableLLMEnhancement {
		reasons = append(reasons, "LLM enhancement not enabled")
	}
	if t.Status != TranscriptionStatusCompleted {
		reasons = append(reasons, "transcription status is "+string(t.Status))
	}
	if !t.HasText() {
		reasons = append(reasons, "no text to enhance")
	}
	if !t.LLMEnhancementStatus.CanTransitionTo(EnhancementStatusProcessing) {
		reasons = append(reasons, "enhancement already "+string(t.LLMEnhancementStatus))
	}
	return reasons
}

// MarkLLMProcessing starts an enhancement attempt
func (t *Transcription) MarkLLMProcessing() error {
	if !t.CanBeEnhanced() {
		return &InvalidStateError{
			Entity: "llm enhancement",
			From:   string(t.LLMEnhancementStatus),
			To:     string(EnhancementStatusProcessing),
			Reason: strings.Join(t.EnhancementBlockers(), ", "),
		}
	}
	t.LLMEnhancementStatus = EnhancementStatusProcessing
	t.LLMErrorMessage = nil
	return nil
}

// CompleteLLMEnhancement stores the enhanced text. The original text is kept.
func (t *Transcription) CompleteLLMEnhancement(enhancedText string, processingSeconds float64) error {
	if err := t.advanceLLM(EnhancementStatusCompleted); err != nil {
		return err
	}
	enhancedText = strings.TrimSpace(enhancedText)
	t.EnhancedText = &enhancedText
	t.LLMProcessingTimeSeconds = &processingSeconds
	t.LLMErrorMessage = nil
	return nil
}

// FailLLMEnhancement records an enhancement failure; the transcript is left untouched
func (t *Transcription) FailLLMEnhancement(message string) error {
	if err := t.advanceLLM(EnhancementStatusFailed); err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		message = "unknown error"
	}
	t.LLMErrorMessage = &message
	return nil
}

func (t *Transcription) advanceLLM(next EnhancementStatus) error {
	if !t.LLMEnhancementStatus.CanTransitionTo(next) {
		return &InvalidStateError{Entity: "llm enhancement", From: string(t.LLMEnhancementStatus), To: string(next)}
	}
	t.LLMEnhancementStatus = next
	return nil
}
