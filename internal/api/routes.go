package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Innominate-Dev/Halal-Stock-Screener/config"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Single-subject routes run under the per-ticker deadline. Batch routes
	// are excluded on purpose: each ticker already gets its own timeout
	// inside the screener, and a shared request deadline would cancel queued
	// tickers that are individually within budget. The server WriteTimeout
	// bounds the batch as a whole.
	perTicker := middleware.Timeout(time.Duration(cfg.Screening.TimeoutSeconds) * time.Second)

	// Root route
	r.Get("/", h.HandleIndex)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", h.HandleHealth)

		// Screening
		r.With(perTicker).Get("/screen/{ticker}", h.HandleScreenTicker)
		r.Post("/screen/batch", h.HandleScreenBatch)

		// Default universe screen
		r.Get("/halal-stocks", h.HandleGetHalalStocks)

		// Stored verdicts
		r.Route("/verdicts", func(r chi.Router) {
			r.Use(perTicker)
			r.Get("/", h.HandleListVerdicts)
			r.Get("/{ticker}", h.HandleGetVerdict)
		})
	})

	return r
}
