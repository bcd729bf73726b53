package handler

import (
	"log/slog"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/admin"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler/studio"
	"github.com/mandalnilabja/scenesculpt/internal/types"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Admin  *admin.Handlers
	Infra  *infra.Handlers
	Studio *studio.Handlers
}

// RepoOptions carries what the handler packages need beyond storage.
type RepoOptions struct {
	EngineID string
	Defaults types.GenerationParameters
	// Keys is told when stored credentials change. May be nil.
	Keys   admin.KeyInvalidator
	Logger *slog.Logger
}

// NewRepo creates a new instance of the composed handler repository.
func NewRepo(store storage.Storage, sess studio.Studio, opts RepoOptions) *Repo {
	startTime := time.Now()
	return &Repo{
		Admin:  admin.New(store, startTime, opts.Keys),
		Infra:  infra.New(startTime, opts.EngineID),
		Studio: studio.New(sess, store, opts.Defaults, opts.Logger),
	}
}
