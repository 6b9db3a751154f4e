package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ecdye/jwt-pizza-service/internal/factory"
	"github.com/ecdye/jwt-pizza-service/internal/handlers"
	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/metrics"
	"github.com/ecdye/jwt-pizza-service/internal/mw"
	"github.com/ecdye/jwt-pizza-service/internal/token"
	"github.com/ecdye/jwt-pizza-service/internal/types"
	"github.com/ecdye/jwt-pizza-service/internal/version"
)

type Deps struct {
	Store   types.DataStore
	Issuer  *token.Issuer
	Factory factory.Fulfiller
}

type Options struct {
	EnableCORS bool
	// ListPerPage is the default page size for listing endpoints.
	ListPerPage int
	// Metrics enables the prometheus middleware and scrape endpoint.
	Metrics bool
}

// BuildRouter assembles the full HTTP surface.
func BuildRouter(d Deps, opts Options) http.Handler {
	r := chi.NewRouter()

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(mw.Trace())
	r.Use(mw.Logger(mw.LogOpts{
		SkipPaths:     []string{"/healthz", "/version", "/metrics"},
		RedactHeaders: []string{"Authorization"},
	}))

	if opts.Metrics {
		m := metrics.New()
		r.Use(m.Middleware)
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	auth := mw.NewAuthenticator(d.Issuer, d.Store)
	authH := handlers.NewAuthHandler(d.Store, d.Store, d.Issuer)
	userH := handlers.NewUserHandler(d.Store, d.Store, d.Issuer, opts.ListPerPage)
	franchiseH := handlers.NewFranchiseHandler(d.Store, opts.ListPerPage)
	orderH := handlers.NewOrderHandler(d.Store, d.Store, d.Store, d.Factory, opts.ListPerPage)

	r.Get("/healthz", healthCheckHandler)
	r.Get("/version", versionHandler)
	r.Get("/api/docs", handlers.Docs)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/", authH.Register)
		r.Put("/", authH.Login)
		r.With(auth.Required).Delete("/", authH.Logout)
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(auth.Required)
		r.Get("/", userH.List)
		r.Get("/me", userH.Me)
		r.Put("/{userId}", userH.Update)
		r.Delete("/{userId}", userH.Delete)
	})

	r.Route("/api/franchise", func(r chi.Router) {
		r.With(auth.Optional).Get("/", franchiseH.List)
		r.Group(func(r chi.Router) {
			r.Use(auth.Required)
			r.Get("/{userId}", franchiseH.ForUser)
			r.Post("/", franchiseH.Create)
			r.Delete("/{franchiseId}", franchiseH.Delete)
			r.Post("/{franchiseId}/store", franchiseH.CreateStore)
			r.Delete("/{franchiseId}/store/{storeId}", franchiseH.DeleteStore)
		})
	})

	r.Route("/api/order", func(r chi.Router) {
		r.Get("/menu", orderH.GetMenu)
		r.Group(func(r chi.Router) {
			r.Use(auth.Required)
			r.Put("/menu", orderH.AddMenuItem)
			r.Get("/", orderH.GetOrders)
			r.Post("/", orderH.Create)
		})
	})

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"version": version.Version})
}
