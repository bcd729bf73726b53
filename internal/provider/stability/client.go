// Package stability implements the Stability AI REST generation provider.
package stability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mandalnilabja/scenesculpt/internal/provider"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

const (
	opTextToImage  = "text-to-image"
	opImageToImage = "image-to-image"
)

// Options configures a Client. It is copied on construction.
type Options struct {
	// BaseURL is the API root, e.g. https://api.stability.ai/v1
	BaseURL  string
	EngineID string

	// HTTPClient defaults to http.DefaultClient. The client adds no timeout
	// of its own; the request context or this client bounds each call.
	HTTPClient *http.Client

	Keys provider.KeySource

	// DumpDir, when set, receives the raw body of every response.
	DumpDir string

	Logger *slog.Logger
}

// Client talks to the generation endpoints of a single engine.
type Client struct {
	opts Options
}

var _ provider.ImageProvider = (*Client)(nil)

// New creates a client. BaseURL, EngineID and Keys are required.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" || opts.EngineID == "" {
		return nil, fmt.Errorf("stability: base url and engine id are required")
	}
	if opts.Keys == nil {
		return nil, fmt.Errorf("stability: key source is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{opts: opts}, nil
}

// EngineID returns the engine every request targets.
func (c *Client) EngineID() string { return c.opts.EngineID }

// TextToImage generates an image from the prompt in params.
func (c *Client) TextToImage(ctx context.Context, params types.GenerationParameters) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, types.AsValidation(err)
	}

	body, err := buildTextToImageBody(params)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", opTextToImage, err)
	}
	return c.do(ctx, opTextToImage, "application/json", body)
}

// ImageToImage generates an image seeded by seedPNG.
func (c *Client) ImageToImage(ctx context.Context, params types.GenerationParameters, seedPNG []byte) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, types.AsValidation(err)
	}
	if len(seedPNG) == 0 {
		return nil, types.AsValidation(&types.ValidationError{Field: "image", Message: "seed image is empty"})
	}

	contentType, body, err := buildImageToImageForm(params, seedPNG)
	if err != nil {
		return nil, fmt.Errorf("%s: encode form: %w", opImageToImage, err)
	}
	return c.do(ctx, opImageToImage, contentType, body)
}

func (c *Client) endpoint(op string) string {
	return c.opts.BaseURL + "/generation/" + c.opts.EngineID + "/" + op
}

// do sends one request and decodes the first artifact. It never retries.
func (c *Client) do(ctx context.Context, op, contentType string, body []byte) ([]byte, error) {
	apiKey, err := c.opts.Keys.APIKey(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	startTime := time.Now()
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, types.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewNetworkError(op, err)
	}

	c.opts.Logger.Debug("generation response",
		"op", op,
		"engine", c.opts.EngineID,
		"status", resp.StatusCode,
		"request_size", humanize.Bytes(uint64(len(body))),
		"response_size", humanize.Bytes(uint64(len(respBody))),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	c.dump(op, respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, types.NewAPIErrorResponse(op, resp.StatusCode, respBody)
	}

	return decodeFirstArtifact(op, respBody)
}
