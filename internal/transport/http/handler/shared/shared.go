// Package shared holds response helpers used by every handler package.
package shared

import (
	"encoding/json"
	"net/http"
	"strconv"
	"unicode"

	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteJSONError writes the standard error envelope, typed by status.
func WriteJSONError(w http.ResponseWriter, message string, status int) {
	types.WriteError(w, status, types.NewAPIError(message, ErrorType(status)))
}

// ErrorType maps an HTTP status to an error envelope type.
func ErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return types.ErrorTypeInvalidRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.ErrorTypeAuthentication
	case http.StatusNotFound:
		return types.ErrorTypeNotFound
	case http.StatusConflict:
		return types.ErrorTypeConflict
	case http.StatusPreconditionFailed:
		return types.ErrorTypePrecondition
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return types.ErrorTypeUpstream
	}
	return types.ErrorTypeServer
}

// QueryInt parses an integer query parameter, returning def when it is
// absent or malformed.
func QueryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// IsValidAdminPassword validates the admin password format: at least 8
// characters, no whitespace, at least one letter and one digit.
func IsValidAdminPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsSpace(c) || !unicode.IsPrint(c):
			return false
		case unicode.IsLetter(c):
			hasLetter = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
