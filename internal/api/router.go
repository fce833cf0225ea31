package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/taskboard/backend/internal/api/handlers"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/metrics"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/services"
)

func NewRouter(cfg config.Config, sessions *middleware.Sessions, userSvc *services.UserService, taskSvc *services.TaskService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics, middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(userSvc, sessions)
	taskH := handlers.NewTaskHandler(taskSvc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/logout", authH.Logout)
		r.With(sessions.Identify).Get("/auth/me", authH.Me)

		r.Route("/tasks", func(r chi.Router) {
			r.Use(sessions.Require)
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Get("/{id}", taskH.Get)
			r.Put("/{id}", taskH.Update)
			r.Delete("/{id}", taskH.Delete)
		})

		r.Route("/admin/tasks", func(r chi.Router) {
			r.Use(sessions.Require, middleware.RequireRole(models.RoleAdmin))
			r.Get("/", taskH.List)
			r.Put("/{id}", taskH.Update)
			r.Delete("/{id}", taskH.Delete)
		})
	})

	return r
}
