package models

import "time"

// Generation status values.
const (
	GenerationSucceeded = "succeeded"
	GenerationFailed    = "failed"
)

// GenerationLog records one generation attempt. Image bytes are never stored.
type GenerationLog struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Mode         string    `json:"mode"`
	Engine       string    `json:"engine"`
	Prompt       string    `json:"prompt"`
	PromptTokens int       `json:"prompt_tokens"`
	Steps        int       `json:"steps"`
	CfgScale     int       `json:"cfg_scale"`
	StylePreset  string    `json:"style_preset"`
	Sampler      string    `json:"sampler,omitempty"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// GenerationFilter narrows a history query.
type GenerationFilter struct {
	Status string
	Mode   string
	Limit  int
}
