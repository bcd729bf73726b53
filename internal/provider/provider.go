// Package provider defines the image generation backend and where its API
// key comes from.
package provider

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// ErrNoAPIKey is returned when no API key is configured for a request
var ErrNoAPIKey = errors.New("no API key configured")

// ImageProvider generates a single image per call.
type ImageProvider interface {
	// TextToImage returns the encoded bytes of an image generated from params.
	TextToImage(ctx context.Context, params types.GenerationParameters) ([]byte, error)

	// ImageToImage returns an image derived from seedPNG guided by params.
	ImageToImage(ctx context.Context, params types.GenerationParameters, seedPNG []byte) ([]byte, error)
}

// KeySource yields the API key used for a request. It is consulted on every
// call so rotated keys take effect without a restart.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) (string, error)

func (f KeySourceFunc) APIKey(ctx context.Context) (string, error) { return f(ctx) }

// EnvAPIKey is the variable read by NewEnvKeySource by default.
const EnvAPIKey = "STABILITY_API_KEY"

// EnvKeySource holds a key read from the environment once, at construction.
type EnvKeySource struct {
	key string
}

// NewEnvKeySource snapshots the named variable, EnvAPIKey when name is empty.
func NewEnvKeySource(name string) EnvKeySource {
	if name == "" {
		name = EnvAPIKey
	}
	return EnvKeySource{key: strings.TrimSpace(os.Getenv(name))}
}

// APIKey returns the snapshotted key or ErrNoAPIKey.
func (s EnvKeySource) APIKey(ctx context.Context) (string, error) {
	if s.key == "" {
		return "", ErrNoAPIKey
	}
	return s.key, nil
}
