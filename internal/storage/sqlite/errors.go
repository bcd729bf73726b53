package sqlite

import (
	"errors"
	"strings"
)

// Errors returned by storage operations.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStorageClosed   = errors.New("storage is closed")
	ErrEncryptionError = errors.New("encryption error")
)

// mapConstraintError turns a UNIQUE violation into ErrDuplicateKey.
func mapConstraintError(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateKey
	}
	return err
}
