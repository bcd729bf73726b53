package stability

import (
	"encoding/json"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// textToImageRequest is the JSON body of the text-to-image endpoint.
// Sampler is omitted when empty so the API picks its own.
type textToImageRequest struct {
	Height             int          `json:"height"`
	Width              int          `json:"width"`
	CfgScale           int          `json:"cfg_scale"`
	Steps              int          `json:"steps"`
	ClipGuidancePreset string       `json:"clip_guidance_preset"`
	StylePreset        string       `json:"style_preset"`
	Sampler            string       `json:"sampler,omitempty"`
	TextPrompts        []textPrompt `json:"text_prompts"`
}

func buildTextToImageBody(p types.GenerationParameters) ([]byte, error) {
	return json.Marshal(textToImageRequest{
		Height:             p.Height,
		Width:              p.Width,
		CfgScale:           p.CfgScale,
		Steps:              p.Steps,
		ClipGuidancePreset: p.ClipGuidancePreset,
		StylePreset:        p.StylePreset,
		Sampler:            p.Sampler,
		TextPrompts:        []textPrompt{{Text: p.Prompt, Weight: p.PromptWeight}},
	})
}
