package types

import "time"

// ParameterOverrides carries the fields a caller chose to set. Nil fields
// keep the configured defaults.
type ParameterOverrides struct {
	Prompt             *string  `json:"prompt,omitempty"`
	Steps              *int     `json:"steps,omitempty"`
	Width              *int     `json:"width,omitempty"`
	Height             *int     `json:"height,omitempty"`
	CfgScale           *int     `json:"cfg_scale,omitempty"`
	PromptWeight       *float64 `json:"prompt_weight,omitempty"`
	ImageStrength      *float64 `json:"image_strength,omitempty"`
	ClipGuidancePreset *string  `json:"clip_guidance_preset,omitempty"`
	Sampler            *string  `json:"sampler,omitempty"`
	StylePreset        *string  `json:"style_preset,omitempty"`
}

// Apply returns base with every non-nil override copied over it.
func (o ParameterOverrides) Apply(base GenerationParameters) GenerationParameters {
	if o.Prompt != nil {
		base.Prompt = *o.Prompt
	}
	if o.Steps != nil {
		base.Steps = *o.Steps
	}
	if o.Width != nil {
		base.Width = *o.Width
	}
	if o.Height != nil {
		base.Height = *o.Height
	}
	if o.CfgScale != nil {
		base.CfgScale = *o.CfgScale
	}
	if o.PromptWeight != nil {
		base.PromptWeight = *o.PromptWeight
	}
	if o.ImageStrength != nil {
		base.ImageStrength = *o.ImageStrength
	}
	if o.ClipGuidancePreset != nil {
		base.ClipGuidancePreset = *o.ClipGuidancePreset
	}
	if o.Sampler != nil {
		base.Sampler = *o.Sampler
	}
	if o.StylePreset != nil {
		base.StylePreset = *o.StylePreset
	}
	return base
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Mode   string             `json:"mode"`
	Params ParameterOverrides `json:"params"`
}

// ViewRequest names a viewport for capture or background operations.
// An empty view selects the only open view.
type ViewRequest struct {
	View string `json:"view"`
}

// ExportRequest is the body of POST /api/image/export.
type ExportRequest struct {
	Name string `json:"name"`
}

// ImageInfo describes the current image without its pixels.
type ImageInfo struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Source    string    `json:"source"`
	Bytes     int       `json:"bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateResponse is returned by a successful generation.
type GenerateResponse struct {
	RequestID    string    `json:"request_id"`
	Mode         Mode      `json:"mode"`
	Image        ImageInfo `json:"image"`
	PromptTokens int       `json:"prompt_tokens"`
	DurationMs   int64     `json:"duration_ms"`
}

// OptionsResponse lists the accepted enumerations, bounds and defaults.
type OptionsResponse struct {
	ClipGuidancePresets []string             `json:"clip_guidance_presets"`
	Samplers            []string             `json:"samplers"`
	StylePresets        []string             `json:"style_presets"`
	Modes               []Mode               `json:"modes"`
	Bounds              map[string][2]any    `json:"bounds"`
	Defaults            GenerationParameters `json:"defaults"`
}

// NewOptionsResponse builds the options listing around the given defaults.
func NewOptionsResponse(defaults GenerationParameters) *OptionsResponse {
	return &OptionsResponse{
		ClipGuidancePresets: ClipGuidancePresets,
		Samplers:            Samplers,
		StylePresets:        StylePresets,
		Modes:               []Mode{ModeRegenerate, ModeIterate},
		Bounds: map[string][2]any{
			"steps":          {MinSteps, MaxSteps},
			"cfg_scale":      {MinCfgScale, MaxCfgScale},
			"prompt_weight":  {MinPromptWeight, MaxPromptWeight},
			"image_strength": {MinImageStrength, MaxImageStrength},
		},
		Defaults: defaults,
	}
}
