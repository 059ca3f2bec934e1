package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает таблицу маршрутов API.
// Валидаторы подключаются к маршрутам через With/Use и отвечают 400 до вызова обработчика.
func NewRouter(
	users *UserHandler,
	roles *RoleHandler,
	health *HealthHandler,
	requestTimeout time.Duration,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// обработчики 404/405 задаются до Route, чтобы их унаследовали подроутеры
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondErrorMessage(w, http.StatusNotFound, "Route not found", logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed", logger)
	})

	r.Get("/healthz", health.Healthz)
	r.Get("/roles", roles.ListRoles)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.ListUsers)
		r.With(ValidateUserBody(logger)).Post("/", users.CreateUser)

		r.Route("/{id}", func(r chi.Router) {
			// id проверяется после сопоставления метода, поэтому чужой метод даёт 405, а не 400
			byID := r.With(ValidateUserID(logger))

			byID.Get("/", users.GetUser)
			byID.With(ValidateUserBody(logger)).Put("/", users.UpdateUser)
			byID.Delete("/", users.DeleteUser)

			byID.Get("/roles", roles.ListUserRoles)
			byID.With(ValidateRoleID(logger)).Put("/roles/{roleId}", roles.AssignRole)
			byID.With(ValidateRoleID(logger)).Delete("/roles/{roleId}", roles.RevokeRole)
		})
	})

	return r
}
