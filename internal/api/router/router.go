package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/welth-app/welth/internal/api/handlers"
	"github.com/welth-app/welth/internal/api/middleware"
	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/metrics"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Chat    *handlers.ChatHandler
	Account *handlers.AccountHandler
	Plan    *handlers.PlanHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.FrontendCORS(cfg.Server.FrontendURL))

	// Public routes
	r.Group(func(r chi.Router) {
		// Swagger documentation
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		// Health checks
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		r.Post("/api/auth/register", h.Auth.Register)
		r.Post("/api/auth/login", h.Auth.Login)
		r.Post("/api/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/auth/logout", h.Auth.Logout)
	})

	// Chat checks its own preconditions, some of them before authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthMiddleware(cfg.Auth.JWTSecret))

		r.Post("/api/chat", h.Chat.Chat)
		r.Get("/api/chat/history", h.Chat.History)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.Get("/api/auth/me", h.Auth.Me)
		r.Get("/api/me", h.Account.Me)

		r.Route("/api/plans", func(r chi.Router) {
			r.Get("/", h.Plan.Get)
			r.Get("/progress", h.Plan.Progress)
		})
	})

	return r
}
