package provider

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
)

// CredentialStore is the slice of storage.Storage the resolver reads.
type CredentialStore interface {
	GetCredentialByName(name string) (*models.Credential, error)
	GetDefaultCredential(provider string) (*models.Credential, error)
}

// CredentialResolver resolves and caches the stored API key. It implements
// KeySource.
type CredentialResolver struct {
	store CredentialStore
	name  string
	cache *ristretto.Cache[string, *models.Credential]
	ttl   time.Duration
}

// NewCredentialResolver creates a resolver with the given TTL. When name is
// empty the default Stability credential is used.
func NewCredentialResolver(store CredentialStore, name string, ttl time.Duration) (*CredentialResolver, error) {
	// Entries are set with cost 1. Counting the internal per-item size
	// would exceed MaxCost and drop every Set.
	cache, err := ristretto.NewCache(&ristretto.Config[string, *models.Credential]{
		NumCounters:        100,
		MaxCost:            10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &CredentialResolver{
		store: store,
		name:  name,
		cache: cache,
		ttl:   ttl,
	}, nil
}

func (r *CredentialResolver) cacheKey() string {
	if r.name == "" {
		return "default:" + models.ProviderStability
	}
	return "name:" + r.name
}

// Resolve returns the configured credential (cached).
func (r *CredentialResolver) Resolve() (*models.Credential, error) {
	key := r.cacheKey()
	if cred, ok := r.cache.Get(key); ok {
		return cred, nil
	}

	var (
		cred *models.Credential
		err  error
	)
	if r.name == "" {
		cred, err = r.store.GetDefaultCredential(models.ProviderStability)
	} else {
		cred, err = r.store.GetCredentialByName(r.name)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoAPIKey
		}
		return nil, err
	}

	r.cache.SetWithTTL(key, cred, 1, r.ttl)
	r.cache.Wait()
	return cred, nil
}

// APIKey implements KeySource.
func (r *CredentialResolver) APIKey(ctx context.Context) (string, error) {
	cred, err := r.Resolve()
	if err != nil {
		return "", err
	}
	if cred.APIKey == "" {
		return "", ErrNoAPIKey
	}
	return cred.APIKey, nil
}

// Invalidate drops cached credentials (call after a credential update).
func (r *CredentialResolver) Invalidate() {
	r.cache.Clear()
}

// Close releases the cache.
func (r *CredentialResolver) Close() {
	r.cache.Close()
}
