package session

import (
	"context"
	"errors"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/imaging"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/tokenizer"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// Result describes a successful generation.
type Result struct {
	RequestID    string
	Mode         types.Mode
	Image        *Image
	PromptTokens int
	Duration     time.Duration
}

// Generate runs one generation. Regenerate creates an image from the prompt;
// Iterate seeds the request with the current image. Only one generation runs
// at a time and the current image changes only on success.
func (c *Controller) Generate(ctx context.Context, params types.GenerationParameters, mode types.Mode) (*Result, error) {
	requestID := c.requestID(ctx)

	// Counted before claiming the session so the busy window covers only
	// the provider call.
	promptTokens := c.countPrompt(requestID, params.Prompt)

	if !c.generating.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.generating.Store(false)

	startTime := c.opts.Now()

	var seed []byte
	if mode == types.ModeIterate {
		cur, err := c.Current()
		if err != nil {
			return nil, err
		}
		seed = cur.PNG
	}

	var (
		data []byte
		err  error
	)
	switch mode {
	case types.ModeRegenerate:
		data, err = c.opts.Provider.TextToImage(ctx, params)
	case types.ModeIterate:
		data, err = c.opts.Provider.ImageToImage(ctx, params, seed)
	default:
		err = types.AsValidation(&types.ValidationError{Field: "mode", Message: "unknown mode " + string(mode)})
	}

	var result *Result
	if err == nil {
		result, err = c.accept(data, mode)
	}

	duration := c.opts.Now().Sub(startTime)
	c.record(requestID, mode, params, promptTokens, duration, err)

	if err != nil {
		c.opts.Logger.Warn("generation failed",
			"request_id", requestID,
			"mode", mode,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return nil, err
	}

	result.RequestID = requestID
	result.PromptTokens = promptTokens
	result.Duration = duration

	c.opts.Logger.Info("generation succeeded",
		"request_id", requestID,
		"mode", mode,
		"width", result.Image.Width,
		"height", result.Image.Height,
		"duration_ms", duration.Milliseconds(),
	)
	return result, nil
}

// accept decodes the generated bytes and makes them the current image.
func (c *Controller) accept(data []byte, mode types.Mode) (*Result, error) {
	img, err := imaging.DecodePNG(data)
	if err != nil {
		return nil, types.NewDecodeError("decode image", err)
	}

	source := SourceGenerate
	if mode == types.ModeIterate {
		source = SourceIterate
	}
	return &Result{Mode: mode, Image: c.setCurrent(data, img, source)}, nil
}

func (c *Controller) countPrompt(requestID, prompt string) int {
	if c.opts.Tokens == nil {
		return 0
	}
	report, err := tokenizer.Check(c.opts.Tokens, prompt)
	if err != nil {
		c.opts.Logger.Debug("prompt token count unavailable", "request_id", requestID, "error", err)
		return 0
	}
	if report.Truncated {
		c.opts.Logger.Warn("prompt exceeds the text encoder window and will be truncated",
			"request_id", requestID,
			"tokens", report.Tokens,
			"limit", report.Limit,
		)
	}
	return report.Tokens
}

func (c *Controller) record(requestID string, mode types.Mode, params types.GenerationParameters, promptTokens int, duration time.Duration, genErr error) {
	if c.opts.History == nil {
		return
	}

	entry := &models.GenerationLog{
		RequestID:    requestID,
		Mode:         string(mode),
		Engine:       c.opts.EngineID,
		Prompt:       params.Prompt,
		PromptTokens: promptTokens,
		Steps:        params.Steps,
		CfgScale:     params.CfgScale,
		StylePreset:  params.StylePreset,
		Sampler:      params.Sampler,
		Status:       models.GenerationSucceeded,
		DurationMs:   duration.Milliseconds(),
	}
	if genErr != nil {
		entry.Status = models.GenerationFailed
		entry.ErrorMessage = genErr.Error()
		var ge *types.GenerationError
		if errors.As(genErr, &ge) {
			entry.ErrorKind = string(ge.Kind)
		} else if errors.Is(genErr, types.ErrValidation) {
			entry.ErrorKind = string(types.KindValidation)
		}
	}

	if err := c.opts.History.LogGeneration(entry); err != nil {
		c.opts.Logger.Error("failed to record generation", "request_id", requestID, "error", err)
	}
}
