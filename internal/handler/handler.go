package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

// UserHandler обработчик HTTP-запросов для работы с пользователями.
// Проверка id и тела выполняется middleware из validator.go до вызова методов.
type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(uc usecase.UserUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{userUseCase: uc, logger: logger}
}

// ListUsers обрабатывает GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userUseCase.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		respondWithError(w, err, h.logger)
		return
	}

	h.logger.Info("users listed", "count", len(users))
	respondSuccess(w, http.StatusOK, "Users retrieved successfully", toUserResponses(users), h.logger)
}

// GetUser обрабатывает GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, rawID := userIDFrom(r.Context()), rawUserIDFrom(r.Context())

	user, err := h.userUseCase.GetUser(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to get user", "user_id", id, "error", err)
		respondWithError(w, withPathUserID(err, rawID), h.logger)
		return
	}

	respondSuccess(w, http.StatusOK,
		fmt.Sprintf("User with id %s retrieved successfully", rawID),
		toUserResponse(*user), h.logger)
}

// CreateUser обрабатывает POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in := userInputFrom(r.Context())

	user, err := h.userUseCase.CreateUser(r.Context(), in)
	if err != nil {
		h.logger.Warn("failed to create user", "email", in.Email, "error", err)
		respondWithError(w, err, h.logger)
		return
	}

	h.logger.Info("user created", "user_id", user.ID)
	respondSuccess(w, http.StatusCreated, "User created successfully", toUserResponse(*user), h.logger)
}

// UpdateUser обрабатывает PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, rawID := userIDFrom(r.Context()), rawUserIDFrom(r.Context())
	in := userInputFrom(r.Context())

	user, err := h.userUseCase.UpdateUser(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("failed to update user", "user_id", id, "error", err)
		respondWithError(w, withPathUserID(err, rawID), h.logger)
		return
	}

	h.logger.Info("user updated", "user_id", id)
	respondSuccess(w, http.StatusOK,
		fmt.Sprintf("User with id %s updated successfully", rawID),
		toUserResponse(*user), h.logger)
}

// DeleteUser обрабатывает DELETE /users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, rawID := userIDFrom(r.Context()), rawUserIDFrom(r.Context())

	if err := h.userUseCase.DeleteUser(r.Context(), id); err != nil {
		h.logger.Warn("failed to delete user", "user_id", id, "error", err)
		respondWithError(w, withPathUserID(err, rawID), h.logger)
		return
	}

	h.logger.Info("user deleted", "user_id", id)
	respondSuccess(w, http.StatusOK,
		fmt.Sprintf("User with id %s deleted successfully", rawID),
		emptyObject, h.logger)
}

// withPathUserID подставляет в ответ 404 id в том виде, в каком клиент передал его в пути
func withPathUserID(err error, rawID string) error {
	if rawID == "" || !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return domain.NewNotFoundError(domain.UserNotFoundMessage(rawID))
}
