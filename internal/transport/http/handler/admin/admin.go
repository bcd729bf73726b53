// Package admin serves the credential and password management API.
package admin

import (
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
)

// KeyInvalidator drops cached API keys after a credential changes.
type KeyInvalidator interface {
	Invalidate()
}

// Handlers holds the dependencies for admin HTTP handlers.
type Handlers struct {
	Storage   storage.Storage
	StartTime time.Time
	// Keys is optional; nil when the API key does not come from the store.
	Keys KeyInvalidator
}

// New creates a new instance of admin handlers.
func New(store storage.Storage, startTime time.Time, keys KeyInvalidator) *Handlers {
	return &Handlers{
		Storage:   store,
		StartTime: startTime,
		Keys:      keys,
	}
}

// invalidateKeys is called after every credential write.
func (h *Handlers) invalidateKeys() {
	if h.Keys != nil {
		h.Keys.Invalidate()
	}
}
