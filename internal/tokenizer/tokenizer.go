// Package tokenizer estimates how many tokens a prompt uses.
package tokenizer

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
)

// ClipTokenLimit is the context window of the CLIP text encoder. Prompt
// tokens past it are ignored by the model.
const ClipTokenLimit = 77

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base"
	EncodingO200kBase  = "o200k_base"
)

// Counter counts prompt tokens.
type Counter interface {
	CountTokens(text string) (int, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(text string) (int, error)

func (f CounterFunc) CountTokens(text string) (int, error) { return f(text) }

// ErrNotLoaded is returned by CountTokens before a successful Load.
var ErrNotLoaded = errors.New("tokenizer: encoding not loaded")

// TiktokenTokenizer implements Counter using tiktoken-go. CLIP uses its own
// BPE vocabulary, so the count is an estimate.
type TiktokenTokenizer struct {
	name string

	once sync.Once
	enc  atomic.Pointer[tiktoken.Tiktoken]
	err  error
}

// New creates a tokenizer using cl100k_base.
func New() *TiktokenTokenizer {
	return NewWithEncoding(EncodingCL100kBase)
}

// NewWithEncoding creates a tokenizer for a named tiktoken encoding. Nothing
// is fetched until Load.
func NewWithEncoding(name string) *TiktokenTokenizer {
	return &TiktokenTokenizer{name: name}
}

// Load fetches the encoding, which may download the BPE file. It runs at
// most once; a failure is kept and returned by every later call.
func (t *TiktokenTokenizer) Load() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.name)
		if err != nil {
			t.err = err
			return
		}
		t.enc.Store(enc)
	})
	return t.err
}

// CountTokens counts tokens in text. It never loads the encoding itself.
func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	enc := t.enc.Load()
	if enc == nil {
		return 0, ErrNotLoaded
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// PromptReport describes a prompt against the CLIP window.
type PromptReport struct {
	Tokens    int  `json:"tokens"`
	Limit     int  `json:"limit"`
	Truncated bool `json:"truncated"`
}

// Check counts prompt tokens and flags prompts longer than ClipTokenLimit.
func Check(c Counter, prompt string) (PromptReport, error) {
	n, err := c.CountTokens(prompt)
	if err != nil {
		return PromptReport{Limit: ClipTokenLimit}, err
	}
	return PromptReport{
		Tokens:    n,
		Limit:     ClipTokenLimit,
		Truncated: n > ClipTokenLimit,
	}, nil
}
