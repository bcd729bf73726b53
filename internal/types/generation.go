package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindAPI        ErrorKind = "api"
	KindDecode     ErrorKind = "decode"
	KindValidation ErrorKind = "validation"
)

// Sentinels for errors.Is matching against a GenerationError's kind.
var (
	ErrNetwork    = &GenerationError{Kind: KindNetwork}
	ErrAPI        = &GenerationError{Kind: KindAPI}
	ErrDecode     = &GenerationError{Kind: KindDecode}
	ErrValidation = &GenerationError{Kind: KindValidation}
)

// MaxErrorBody caps the upstream body kept on an API error.
const MaxErrorBody = 8 << 10

// GenerationError is returned by every generation call that fails.
type GenerationError struct {
	Kind ErrorKind
	// Op is the endpoint or step that failed, e.g. "text-to-image".
	Op string
	// StatusCode and Body are set for KindAPI.
	StatusCode int
	Body       string
	Err        error
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("%s: api returned status %d: %s", e.Op, e.StatusCode, e.Body)
	case KindValidation:
		if e.Err != nil {
			return "invalid parameters: " + e.Err.Error()
		}
		return "invalid parameters"
	}
	msg := string(e.Kind) + " error"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports whether target is a GenerationError of the same kind.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(op string, err error) *GenerationError {
	return &GenerationError{Kind: KindNetwork, Op: op, Err: err}
}

// NewAPIErrorResponse wraps a non-2xx response, keeping at most MaxErrorBody bytes
// of its body.
func NewAPIErrorResponse(op string, status int, body []byte) *GenerationError {
	if len(body) > MaxErrorBody {
		body = body[:MaxErrorBody]
	}
	return &GenerationError{Kind: KindAPI, Op: op, StatusCode: status, Body: string(body)}
}

// NewDecodeError wraps a malformed or empty response.
func NewDecodeError(op string, err error) *GenerationError {
	return &GenerationError{Kind: KindDecode, Op: op, Err: err}
}

// ValidationError reports a parameter outside its declared bounds.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match a bare ValidationError too.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	return ok && t.Kind == KindValidation
}

// AsValidation wraps err as a KindValidation GenerationError when it is a
// *ValidationError, and returns it unchanged otherwise.
func AsValidation(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &GenerationError{Kind: KindValidation, Err: ve}
	}
	return err
}
