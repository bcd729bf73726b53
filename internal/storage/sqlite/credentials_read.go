package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
)

const credentialColumns = `id, provider, name, api_key, is_default, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCredential reads one row and decrypts its key.
func (s *Storage) scanCredential(row rowScanner) (*models.Credential, error) {
	var cred models.Credential
	var isDefault int
	var encryptedKey string

	err := row.Scan(&cred.ID, &cred.Provider, &cred.Name, &encryptedKey, &isDefault, &cred.CreatedAt, &cred.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	key, err := s.encryptor.Decrypt(encryptedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionError, err)
	}

	cred.APIKey = key
	cred.IsDefault = isDefault == 1
	return &cred, nil
}

// GetCredential retrieves a credential by ID.
func (s *Storage) GetCredential(id string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	return s.scanCredential(s.db.QueryRow(
		`SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id,
	))
}

// GetCredentialByName retrieves a credential by its unique name.
func (s *Storage) GetCredentialByName(name string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	return s.scanCredential(s.db.QueryRow(
		`SELECT `+credentialColumns+` FROM credentials WHERE name = ?`, name,
	))
}

// GetDefaultCredential retrieves the default credential for a provider.
func (s *Storage) GetDefaultCredential(provider string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	return s.scanCredential(s.db.QueryRow(
		`SELECT `+credentialColumns+` FROM credentials WHERE provider = ? AND is_default = 1`, provider,
	))
}

// ListCredentials retrieves all credentials, newest first.
func (s *Storage) ListCredentials() ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStorageClosed
	}

	rows, err := s.db.Query(`SELECT ` + credentialColumns + ` FROM credentials ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credentials []*models.Credential
	for rows.Next() {
		cred, err := s.scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, cred)
	}

	return credentials, rows.Err()
}
