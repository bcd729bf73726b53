package app

import (
	"log/slog"
	"net/http"

	"github.com/mandalnilabja/scenesculpt/internal/transport/http/handler"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/middleware"
	"github.com/mandalnilabja/scenesculpt/internal/transport/http/middleware/auth"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger    *slog.Logger
	Passwords auth.PasswordStore
	AuthCache *auth.VerifiedCache
}

// NewRouter creates and configures the HTTP router with all application routes.
// Returns an http.Handler with middleware applied.
// opts must not be nil: studio and admin routes require authentication.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth)
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	mux.HandleFunc("GET /api/options", repo.Studio.Options)
	mux.HandleFunc("GET /api/status", repo.Studio.Status)
	mux.HandleFunc("GET /api/views", repo.Studio.Views)

	adminAuth := auth.AdminAuth(opts.Passwords, opts.AuthCache)
	withAuth := func(h http.HandlerFunc) http.Handler {
		return adminAuth(h)
	}

	registerStudioRoutes(mux, repo, withAuth)
	registerAdminRoutes(mux, repo, withAuth)

	// Root returns JSON status
	mux.HandleFunc("GET /", repo.Infra.RootStatus)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	// Request logging (if logger provided)
	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	// Request ID (always applied)
	h = middleware.RequestID(h)

	// CORS (always applied so browser-based frontends can call the API)
	h = middleware.CORS(h)

	return h
}

// registerStudioRoutes adds generation and image routes.
func registerStudioRoutes(mux *http.ServeMux, repo *handler.Repo, withAuth func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST /api/generate", withAuth(repo.Studio.Generate))

	mux.Handle("GET /api/image", withAuth(repo.Studio.Image))
	mux.Handle("POST /api/image/import", withAuth(repo.Studio.Import))
	mux.Handle("POST /api/image/export", withAuth(repo.Studio.Export))
	mux.Handle("POST /api/image/capture", withAuth(repo.Studio.Capture))
	mux.Handle("POST /api/image/background", withAuth(repo.Studio.Background))

	mux.Handle("GET /api/history", withAuth(repo.Studio.History))
}

// registerAdminRoutes adds all admin API routes to the router.
func registerAdminRoutes(mux *http.ServeMux, repo *handler.Repo, withAuth func(http.HandlerFunc) http.Handler) {
	// Credential management
	mux.Handle("POST /api/admin/credentials", withAuth(repo.Admin.CreateCredential))
	mux.Handle("GET /api/admin/credentials", withAuth(repo.Admin.ListCredentials))
	mux.Handle("GET /api/admin/credentials/{id}", withAuth(repo.Admin.GetCredential))
	mux.Handle("PUT /api/admin/credentials/{id}", withAuth(repo.Admin.UpdateCredential))
	mux.Handle("DELETE /api/admin/credentials/{id}", withAuth(repo.Admin.DeleteCredential))
	mux.Handle("POST /api/admin/credentials/{id}/default", withAuth(repo.Admin.SetDefaultCredential))

	// Password management
	mux.Handle("PUT /api/admin/password", withAuth(repo.Admin.ChangeAdminPassword))

	// System info
	mux.Handle("GET /api/admin/health", withAuth(repo.Admin.AdminHealth))
	mux.Handle("GET /api/admin/info", withAuth(repo.Admin.AdminInfo))
}
