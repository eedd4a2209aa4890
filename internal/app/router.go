package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/counterline/counterline/internal/auth"
	"github.com/counterline/counterline/internal/catalog"
	"github.com/counterline/counterline/internal/ledger"
	"github.com/counterline/counterline/internal/purchasing"
	"github.com/counterline/counterline/internal/reporting"
	"github.com/counterline/counterline/internal/sales"
	"github.com/counterline/counterline/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler       *auth.Handler
	AuthMiddleware    auth.Middleware
	CatalogHandler    *catalog.Handler
	LedgerHandler     *ledger.Handler
	SalesHandler      *sales.Handler
	PurchasingHandler *purchasing.Handler
	ReportingHandler  *reporting.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountPublicRoutes)

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		params.AuthHandler.MountRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.LedgerHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.PurchasingHandler.MountRoutes(r)
		params.ReportingHandler.MountRoutes(r)
	})

	return r
}
