package stability

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

const (
	seedPartName     = "image"
	seedFileName     = "image.png"
	seedContentType  = "image/png"
	initImageModeStr = "IMAGE_STRENGTH"
)

// buildImageToImageForm encodes the multipart body and returns it with its
// content type (including the boundary).
func buildImageToImageForm(p types.GenerationParameters, seedPNG []byte) (string, []byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+seedPartName+`"; filename="`+seedFileName+`"`)
	h.Set("Content-Type", seedContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", nil, err
	}
	if _, err := part.Write(seedPNG); err != nil {
		return "", nil, err
	}

	fields := [][2]string{
		{"text_prompts[0][text]", p.Prompt},
		{"text_prompts[0][weight]", formatFloat(p.PromptWeight)},
		{"image_strength", formatFloat(p.ImageStrength)},
		{"init_image_mode", initImageModeStr},
		{"cfg_scale", strconv.Itoa(p.CfgScale)},
		{"clip_guidance_preset", p.ClipGuidancePreset},
		{"steps", strconv.Itoa(p.Steps)},
		{"samples", "1"},
	}
	if p.Sampler != "" {
		fields = append(fields, [2]string{"sampler", p.Sampler})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return "", nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return "", nil, err
	}
	return mw.FormDataContentType(), buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
