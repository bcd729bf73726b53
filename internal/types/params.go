package types

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Parameter bounds accepted by the generation engine.
const (
	MinSteps         = 10
	MaxSteps         = 150
	MinCfgScale      = 0
	MaxCfgScale      = 35
	MinPromptWeight  = 0.0
	MaxPromptWeight  = 1.0
	MinImageStrength = 0.0
	MaxImageStrength = 1.0

	DefaultSteps              = 50
	DefaultWidth              = 512
	DefaultHeight             = 512
	DefaultCfgScale           = 7
	DefaultPromptWeight       = 1.0
	DefaultImageStrength      = 0.35
	DefaultClipGuidancePreset = "NONE"
	DefaultSampler            = ""
	DefaultStylePreset        = "photographic"
)

// ClipGuidancePresets lists every accepted clip_guidance_preset value.
var ClipGuidancePresets = []string{
	"FAST_BLUE",
	"FAST_GREEN",
	"NONE",
	"SIMPLE",
	"SLOW",
	"SLOWER",
	"SLOWEST",
}

// Samplers lists every accepted sampler. An empty sampler is also valid and
// leaves the choice to the engine.
var Samplers = []string{
	"DDIM",
	"DDPM",
	"K_DPMPP_2M",
	"K_DPMPP_2S_ANCESTRAL",
	"K_DPM_2",
	"K_DPM_2_ANCESTRAL",
	"K_EULER",
	"K_EULER_ANCESTRAL",
	"K_HEUN",
	"K_LMS",
}

// StylePresets lists every accepted style_preset value.
var StylePresets = []string{
	"3d-model",
	"analog-film",
	"anime",
	"cinematic",
	"comic-book",
	"digital-art",
	"enhance",
	"fantasy-art",
	"isometric",
	"line-art",
	"low-poly",
	"modeling-compound",
	"neon-punk",
	"origami",
	"photographic",
	"pixel-art",
	"tile-texture",
}

// GenerationParameters holds every tunable option for a single generation
// request. Values are copied into each call and never shared.
type GenerationParameters struct {
	Prompt             string  `json:"prompt"`
	Steps              int     `json:"steps"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	CfgScale           int     `json:"cfg_scale"`
	PromptWeight       float64 `json:"prompt_weight"`
	ImageStrength      float64 `json:"image_strength"`
	ClipGuidancePreset string  `json:"clip_guidance_preset"`
	Sampler            string  `json:"sampler"`
	StylePreset        string  `json:"style_preset"`
}

// DefaultParameters returns parameters populated with engine defaults and an
// empty prompt.
func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		Steps:              DefaultSteps,
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		CfgScale:           DefaultCfgScale,
		PromptWeight:       DefaultPromptWeight,
		ImageStrength:      DefaultImageStrength,
		ClipGuidancePreset: DefaultClipGuidancePreset,
		Sampler:            DefaultSampler,
		StylePreset:        DefaultStylePreset,
	}
}

// WithPrompt returns a copy with the given prompt.
func (p GenerationParameters) WithPrompt(prompt string) GenerationParameters {
	p.Prompt = prompt
	return p
}

// Validate checks every field against its bounds and enumeration.
// It returns a *ValidationError for the first field that fails.
func (p GenerationParameters) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return &ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	if p.Steps < MinSteps || p.Steps > MaxSteps {
		return &ValidationError{
			Field:   "steps",
			Message: fmt.Sprintf("steps %d must be between %d and %d", p.Steps, MinSteps, MaxSteps),
		}
	}
	if p.Width <= 0 || p.Height <= 0 {
		return &ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("size %dx%d must be positive", p.Width, p.Height),
		}
	}
	if p.CfgScale < MinCfgScale || p.CfgScale > MaxCfgScale {
		return &ValidationError{
			Field:   "cfg_scale",
			Message: fmt.Sprintf("cfg_scale %d must be between %d and %d", p.CfgScale, MinCfgScale, MaxCfgScale),
		}
	}
	if p.PromptWeight < MinPromptWeight || p.PromptWeight > MaxPromptWeight {
		return &ValidationError{
			Field:   "prompt_weight",
			Message: fmt.Sprintf("prompt_weight %.2f must be between %.1f and %.1f", p.PromptWeight, MinPromptWeight, MaxPromptWeight),
		}
	}
	if p.ImageStrength < MinImageStrength || p.ImageStrength > MaxImageStrength {
		return &ValidationError{
			Field:   "image_strength",
			Message: fmt.Sprintf("image_strength %.2f must be between %.1f and %.1f", p.ImageStrength, MinImageStrength, MaxImageStrength),
		}
	}
	if !lo.Contains(ClipGuidancePresets, p.ClipGuidancePreset) {
		return &ValidationError{
			Field:   "clip_guidance_preset",
			Message: fmt.Sprintf("unknown clip_guidance_preset %q", p.ClipGuidancePreset),
		}
	}
	if p.Sampler != "" && !lo.Contains(Samplers, p.Sampler) {
		return &ValidationError{
			Field:   "sampler",
			Message: fmt.Sprintf("unknown sampler %q", p.Sampler),
		}
	}
	if !lo.Contains(StylePresets, p.StylePreset) {
		return &ValidationError{
			Field:   "style_preset",
			Message: fmt.Sprintf("unknown style_preset %q", p.StylePreset),
		}
	}
	return nil
}

// Mode selects between generating from text alone and iterating on the
// current image.
type Mode string

const (
	// ModeRegenerate produces a new image from the prompt (text-to-image).
	ModeRegenerate Mode = "regenerate"
	// ModeIterate uses the current image as the seed (image-to-image).
	ModeIterate Mode = "iterate"
)

// ParseMode converts a string to Mode. An empty string means ModeRegenerate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRegenerate:
		return ModeRegenerate, nil
	case ModeIterate:
		return ModeIterate, nil
	}
	return "", &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", s)}
}
