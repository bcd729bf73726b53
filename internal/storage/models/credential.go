// Package models contains data models for storage operations.
package models

import "time"

// ProviderStability identifies credentials for the Stability generation API.
const ProviderStability = "stability"

// Credential is a stored API key for an image generation provider.
type Credential struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Name      string    `json:"name"`
	APIKey    string    `json:"api_key"` // encrypted at rest
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialPreview is the credential with its key masked, safe to return
// from the admin API.
type CredentialPreview struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	Name          string    `json:"name"`
	APIKeyPreview string    `json:"api_key_preview"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MaskAPIKey keeps the first six and last four characters of a key.
func MaskAPIKey(key string) string {
	if len(key) <= 10 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}

// ToPreview converts a Credential to a CredentialPreview.
func (c *Credential) ToPreview() *CredentialPreview {
	return &CredentialPreview{
		ID:            c.ID,
		Provider:      c.Provider,
		Name:          c.Name,
		APIKeyPreview: MaskAPIKey(c.APIKey),
		IsDefault:     c.IsDefault,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
