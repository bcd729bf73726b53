// Package storage persists credentials, admin settings and generation history.
package storage

import (
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/storage/sqlite"
)

// Re-export types from models package for convenience
type (
	Credential        = models.Credential
	CredentialPreview = models.CredentialPreview
	GenerationLog     = models.GenerationLog
	GenerationFilter  = models.GenerationFilter
)

// Re-export functions from models package
var MaskAPIKey = models.MaskAPIKey

// Re-export errors from sqlite package
var (
	ErrNotFound        = sqlite.ErrNotFound
	ErrDuplicateKey    = sqlite.ErrDuplicateKey
	ErrInvalidInput    = sqlite.ErrInvalidInput
	ErrStorageClosed   = sqlite.ErrStorageClosed
	ErrEncryptionError = sqlite.ErrEncryptionError
)

// Storage defines the interface for persistent data storage
type Storage interface {
	// Credential operations
	CreateCredential(cred *models.Credential) error
	GetCredential(id string) (*models.Credential, error)
	GetCredentialByName(name string) (*models.Credential, error)
	GetDefaultCredential(provider string) (*models.Credential, error)
	ListCredentials() ([]*models.Credential, error)
	UpdateCredential(cred *models.Credential) error
	DeleteCredential(id string) error
	SetDefaultCredential(id string) error

	// Generation history
	LogGeneration(entry *models.GenerationLog) error
	ListGenerations(filter models.GenerationFilter) ([]*models.GenerationLog, error)

	// Admin password operations
	GetAdminPasswordHash() (string, error)
	SetAdminPasswordHash(hash string) error
	HasAdminPassword() (bool, error)

	Close() error
}

// NewSQLiteStorage opens the SQLite store at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	return sqlite.New(dbPath)
}
