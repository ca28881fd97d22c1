package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rosterhq/roster-api/internal/api"
	apiMiddleware "github.com/rosterhq/roster-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.avatars, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes. Get and UploadAvatar enforce admin-or-self
		// themselves; ChangePassword is owner-only since the current
		// password must be presented.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/{id}", userHandler.Get)
			r.Put("/users/{id}/password", userHandler.ChangePassword)
			r.Put("/users/{id}/avatar", userHandler.UploadAvatar)

			// Administrative endpoints
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)

				r.Get("/users", userHandler.List)
				r.Get("/users/by-role/{role}", userHandler.ListByRole)
				r.Post("/users", userHandler.Create)
				r.Put("/users/{id}", userHandler.Update)
				r.Delete("/users/{id}", userHandler.SoftDelete)
				r.Delete("/users/{id}/permanent", userHandler.HardDelete)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
