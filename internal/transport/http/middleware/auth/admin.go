// Package auth provides authentication middleware for HTTP routes.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
)

// VerifiedTTL is how long a successfully verified password skips argon2.
const VerifiedTTL = 5 * time.Minute

// PasswordStore is the slice of storage.Storage the middleware reads.
type PasswordStore interface {
	GetAdminPasswordHash() (string, error)
}

// VerifiedCache maps a digest of a presented password to the stored hash it
// was verified against. A password change alters the hash and so misses.
type VerifiedCache = ristretto.Cache[string, string]

// NewVerifiedCache creates a small cache for AdminAuth.
func NewVerifiedCache() (*VerifiedCache, error) {
	return ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters:        1000,
		MaxCost:            100,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
}

// AdminAuth middleware protects routes using the stored password hash.
// Requires Bearer token authentication with the admin password. cache may
// be nil.
func AdminAuth(store PasswordStore, cache *VerifiedCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract Bearer token
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeUnauthorized(w, "authorization required")
				return
			}
			password := strings.TrimPrefix(auth, "Bearer ")

			// Get stored hash and verify
			hash, err := store.GetAdminPasswordHash()
			if err != nil {
				writeUnauthorized(w, "server error")
				return
			}
			if hash == "" {
				writeUnauthorized(w, "admin not configured")
				return
			}

			key := digest(password)
			if cache != nil {
				if verified, ok := cache.Get(key); ok && verified == hash {
					next.ServeHTTP(w, r)
					return
				}
			}

			valid, err := storage.VerifyPassword(password, hash)
			if err != nil || !valid {
				writeUnauthorized(w, "invalid credentials")
				return
			}

			if cache != nil {
				cache.SetWithTTL(key, hash, 1, VerifiedTTL)
				cache.Wait()
			}
			next.ServeHTTP(w, r)
		})
	}
}

func digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// writeUnauthorized writes a JSON 401 response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="scenesculpt"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    "authentication_error",
		},
	})
}
