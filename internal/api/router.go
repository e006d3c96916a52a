package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/teamline-app/teamline/internal/api/middleware"
	"github.com/teamline-app/teamline/internal/auth"
	"github.com/teamline-app/teamline/internal/config"
	"github.com/teamline-app/teamline/internal/handlers"
	"github.com/teamline-app/teamline/internal/hub"
	"github.com/teamline-app/teamline/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, logger zerolog.Logger, st store.DataStore, redisStore *store.RedisStore, deliveryHub *hub.Hub, authn *auth.Authenticator) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (requires Redis)
	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - a single permitted frontend origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	// Create handler and auth middleware
	h := handlers.NewHandler(st, redisStore, deliveryHub, authn, logger)
	authmw := middleware.NewAuthMiddleware(authn)
	upgrader := handlers.NewUpgrader(cfg.FrontendOrigin)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/health", h.Health)
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)

	// Socket upgrade: token auth happens inside the handler because browser
	// WebSocket clients pass the JWT as a query parameter.
	r.Get("/ws", h.ServeWS(&upgrader))

	// Authenticated routes (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth)

		r.Post("/messages/{chatID}", h.SendMessage)
		r.Get("/messages/{chatID}", h.GetMessages)

		r.Post("/chats", h.CreateChat)
		r.Get("/chats", h.ListChats)
		r.Get("/chats/{chatID}", h.GetChat)
		r.Delete("/chats/{chatID}", h.DeleteChat)

		r.Post("/events", h.CreateEvent)
		r.Get("/events", h.ListEvents)
	})

	return r
}
