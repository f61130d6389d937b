// Package server assembles the HTTP API from the action handlers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"focis/internal/api"
	"focis/internal/audit"
	"focis/internal/catalog"
	"focis/internal/eventstore"
	"focis/internal/identity"
	"focis/internal/integrity"
	"focis/internal/inventory"
	"focis/internal/maintenance"
	"focis/internal/production"
	"focis/internal/security"
)

// Prefix is the mount point of every API route.
const Prefix = "/api/v1"

// Options configures NewRouter.
type Options struct {
	Store    *eventstore.EventStore
	Verifier *identity.Verifier // nil selects development header identity
	Gate     security.Options

	WriteRate  float64 // writes per second across all callers
	WriteBurst int
}

// Handler is a set of routes mounted under Prefix.
type Handler interface {
	Register(r chi.Router)
}

// Handlers builds every action handler over the store.
func Handlers(opts Options) []Handler {
	es := opts.Store
	auditor := integrity.NewAuditor()
	auditor.RegisterDefaultRules()

	return []Handler{
		catalog.NewHandler(catalog.NewService(es)),
		inventory.NewHandler(inventory.NewService(es)),
		production.NewHandler(production.NewService(es)),
		maintenance.NewHandler(maintenance.NewService(es)),
		security.NewHandler(security.NewService(es, opts.Gate)),
		audit.NewHandler(audit.NewService(es)),
		integrity.NewHandler(es, auditor),
	}
}

// NewRouter returns the complete HTTP handler.
func NewRouter(opts Options) http.Handler {
	if opts.WriteRate <= 0 {
		opts.WriteRate = 20
	}
	if opts.WriteBurst <= 0 {
		opts.WriteBurst = 40
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := opts.Store.MasterData(r.Context()); err != nil {
			api.Error(w, err)
			return
		}
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route(Prefix, func(r chi.Router) {
		r.Use(identity.Authenticate(opts.Verifier))
		r.Use(LimitWrites(rate.NewLimiter(rate.Limit(opts.WriteRate), opts.WriteBurst)))
		for _, h := range Handlers(opts) {
			h.Register(r)
		}
	})
	return r
}
