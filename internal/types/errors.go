package types

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON error envelope returned by the local API.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Param   *string `json:"param,omitempty"`
	Detail  string  `json:"detail,omitempty"`
}

// Error type constants
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
	ErrorTypeNotFound       = "not_found_error"
	ErrorTypeConflict       = "conflict_error"
	ErrorTypeUpstream       = "upstream_error"
	ErrorTypePrecondition   = "precondition_error"
	ErrorTypeServer         = "server_error"
)

// NewAPIError creates a new API error.
func NewAPIError(message, errType string) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	}
}

// NewAPIErrorWithParam creates a new API error with a parameter reference.
func NewAPIErrorWithParam(message, errType, param string) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
			Param:   &param,
		},
	}
}

// WithDetail attaches diagnostic text, such as an upstream response body.
func (e *APIError) WithDetail(detail string) *APIError {
	e.Error.Detail = detail
	return e
}

// WriteError writes an API error to the response writer.
func WriteError(w http.ResponseWriter, statusCode int, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(err)
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(message, ErrorTypeInvalidRequest)
}

// ErrConflict creates a conflict error.
func ErrConflict(message string) *APIError {
	return NewAPIError(message, ErrorTypeConflict)
}

// ErrUpstream creates an error describing a failed call to the generation API.
func ErrUpstream(message string) *APIError {
	return NewAPIError(message, ErrorTypeUpstream)
}

// ErrPrecondition creates an error for a missing prerequisite such as an API key.
func ErrPrecondition(message string) *APIError {
	return NewAPIError(message, ErrorTypePrecondition)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(message, ErrorTypeServer)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *APIError {
	return NewAPIError(message, ErrorTypeNotFound)
}
