package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixelpalette/backend/internal/database"
	"github.com/pixelpalette/backend/internal/events"
	mw "github.com/pixelpalette/backend/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Account handlers
	Me             http.HandlerFunc
	UpdateUsername http.HandlerFunc
	DeleteAccount  http.HandlerFunc

	// Credits handlers
	CreditsStatus  http.HandlerFunc
	CreditsHistory http.HandlerFunc
	WatchAd        http.HandlerFunc

	// Generation handler
	Generate http.HandlerFunc

	// Speech handlers
	SpeechVoices     http.HandlerFunc
	SpeechSynthesize http.HandlerFunc

	// Auth middleware
	AuthMiddleware         func(http.Handler) http.Handler
	OptionalAuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, eventsClient *events.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if eventsClient != nil && !eventsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if eventsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public) — optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Generation accepts both anonymous and authenticated callers; the
		// free-use gate decides downstream.
		r.Group(func(r chi.Router) {
			r.Use(h.OptionalAuthMiddleware)
			r.Post("/generate", h.Generate)
		})

		// Speech routes (public)
		r.Route("/speech", func(r chi.Router) {
			r.Get("/voices", h.SpeechVoices)
			r.Post("/", h.SpeechSynthesize)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/account", func(r chi.Router) {
				r.Get("/", h.Me)
				r.Patch("/", h.UpdateUsername)
				r.Delete("/", h.DeleteAccount)
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/", h.CreditsStatus)
				r.Get("/history", h.CreditsHistory)
				r.Post("/ads/{kind}/watch", h.WatchAd)
			})
		})
	})

	return r
}
