package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig bundles handler dependencies.
type RouterConfig struct {
	UserHandler    *UserHandler
	SessionHandler *SessionHandler
	BlogHandler    *BlogHandler
	TestingHandler *TestingHandler
	HealthHandler  *HealthHandler

	// Callers resolves session tokens; nil leaves every request anonymous.
	Callers           CallerResolver
	SessionCookieName string

	APIBasePath       string
	Middlewares       []func(http.Handler) http.Handler
	PrometheusHandler http.Handler
}

// NewRouter wires handlers and middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	for _, mw := range cfg.Middlewares {
		if mw == nil {
			continue
		}
		r.Use(mw)
	}

	apiBasePath := apiMountPath(cfg.APIBasePath)
	r.Route(apiBasePath, func(api chi.Router) {
		api.Use(WithCaller(cfg.Callers, cfg.SessionCookieName))

		if cfg.UserHandler != nil {
			cfg.UserHandler.RegisterRoutes(api)
		}
		if cfg.SessionHandler != nil {
			cfg.SessionHandler.RegisterRoutes(api)
		}
		if cfg.BlogHandler != nil {
			cfg.BlogHandler.RegisterRoutes(api)
		}
		if cfg.TestingHandler != nil {
			cfg.TestingHandler.RegisterRoutes(api)
		}
		if cfg.HealthHandler != nil {
			api.Get("/health", cfg.HealthHandler.ServeHTTP)
		}
		if cfg.PrometheusHandler != nil {
			api.Get("/metrics", cfg.PrometheusHandler.ServeHTTP)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}
