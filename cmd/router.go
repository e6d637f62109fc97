package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/angeloszaimis/api-proxy/internal/cors"
	"github.com/angeloszaimis/api-proxy/internal/handler"
)

var apiPatterns = []string{"/api/{service}", "/api/{service}/*"}

// setupRouter builds the public surface. OPTIONS is registered after the
// catch-all so preflights are answered locally and never reach proxy.
func setupRouter(proxy http.Handler, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)

	for _, pattern := range apiPatterns {
		r.Handle(pattern, proxy)
		r.Method(http.MethodOptions, pattern, cors.Preflight)
	}

	return r
}
