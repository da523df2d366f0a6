package api

import (
	"net/http"
	"time"

	"codetrack/internal/api/handler"
	"codetrack/internal/api/middleware"
	"codetrack/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	adminAPIKey string,
	mappingService *service.MappingService,
	authService *service.AuthService,
	submissionService *service.SubmissionService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes (consumed by the browser extension)
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		authHandler.RegisterRoutes(v1)

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		submissionHandler.RegisterRoutes(v1)
	})

	// Admin routes (API-key guarded)
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.RequireAPIKey(adminAPIKey))
		adminHandler := handler.NewAdminHandler(mappingService)
		adminHandler.RegisterRoutes(admin)
	})

	return r
}
