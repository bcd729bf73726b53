package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
)

// CreateCredential stores a new credential. A credential marked default
// clears the flag on every other credential of the same provider.
func (s *Storage) CreateCredential(cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if cred.Provider == "" || cred.Name == "" || cred.APIKey == "" {
		return ErrInvalidInput
	}

	if cred.ID == "" {
		cred.ID = generateID("cred")
	}

	encryptedKey, err := s.encryptor.Encrypt(cred.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionError, err)
	}

	now := time.Now().UTC()
	cred.CreatedAt = now
	cred.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cred.IsDefault {
		if _, err := tx.Exec("UPDATE credentials SET is_default = 0 WHERE provider = ?", cred.Provider); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO credentials (id, provider, name, api_key, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, cred.ID, cred.Provider, cred.Name, encryptedKey, boolToInt(cred.IsDefault), cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		return mapConstraintError(err)
	}

	return tx.Commit()
}

// UpdateCredential replaces provider, name, key and default flag.
func (s *Storage) UpdateCredential(cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	if cred.ID == "" || cred.APIKey == "" {
		return ErrInvalidInput
	}

	encryptedKey, err := s.encryptor.Encrypt(cred.APIKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionError, err)
	}

	cred.UpdatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cred.IsDefault {
		_, err := tx.Exec("UPDATE credentials SET is_default = 0 WHERE provider = ? AND id != ?", cred.Provider, cred.ID)
		if err != nil {
			return err
		}
	}

	result, err := tx.Exec(`
		UPDATE credentials
		SET provider = ?, name = ?, api_key = ?, is_default = ?, updated_at = ?
		WHERE id = ?
	`, cred.Provider, cred.Name, encryptedKey, boolToInt(cred.IsDefault), cred.UpdatedAt, cred.ID)
	if err != nil {
		return mapConstraintError(err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// DeleteCredential removes a credential by ID.
func (s *Storage) DeleteCredential(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	result, err := s.db.Exec("DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return err
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// SetDefaultCredential makes id the default for its provider.
func (s *Storage) SetDefaultCredential(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStorageClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var provider string
	err = tx.QueryRow("SELECT provider FROM credentials WHERE id = ?", id).Scan(&provider)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec("UPDATE credentials SET is_default = 0 WHERE provider = ?", provider); err != nil {
		return err
	}

	_, err = tx.Exec("UPDATE credentials SET is_default = 1, updated_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return tx.Commit()
}
