// Package encryption seals stored API keys with AES-256-GCM.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/crypto/argon2"
)

// EnvKey names the environment variable holding the master key material.
const EnvKey = "SCENESCULPT_ENCRYPTION_KEY"

// keySalt is fixed so the same material always yields the same key.
var keySalt = []byte("scenesculpt/credentials/v1")

// ErrCiphertextTooShort is returned when the payload cannot hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Encryptor seals and opens secrets stored at rest.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// AES implements Encryptor with AES-256-GCM. The output is base64 of
// nonce||ciphertext.
type AES struct {
	aead cipher.AEAD
}

// New derives the key from SCENESCULPT_ENCRYPTION_KEY, or from machine
// identifiers when the variable is unset.
func New() (*AES, error) {
	material := os.Getenv(EnvKey)
	if material == "" {
		material = machineKeyMaterial()
	}
	return NewWithKey(DeriveKey(material))
}

// NewWithKey creates an encryptor from a raw 32-byte key.
func NewWithKey(key []byte) (*AES, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be 32 bytes for AES-256")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AES{aead: aead}, nil
}

// DeriveKey stretches arbitrary key material into a 256-bit key with argon2id.
func DeriveKey(material string) []byte {
	return argon2.IDKey([]byte(material), keySalt, 1, 64*1024, 4, 32)
}

// Encrypt seals plaintext with a fresh random nonce.
func (e *AES) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (e *AES) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	n := e.aead.NonceSize()
	if len(data) < n {
		return "", ErrCiphertextTooShort
	}

	plaintext, err := e.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// machineKeyMaterial combines host identifiers into default key material.
func machineKeyMaterial() string {
	material := "scenesculpt-default-key"
	if hostname, err := os.Hostname(); err == nil {
		material += hostname
	}
	if home, err := os.UserHomeDir(); err == nil {
		material += home
	}
	return material + runtime.GOOS + runtime.GOARCH
}
