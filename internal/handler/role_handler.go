package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

// RoleHandler обслуживает справочник ролей и назначения ролей пользователям
type RoleHandler struct {
	roleUseCase usecase.RoleUseCase
	logger      *slog.Logger
}

func NewRoleHandler(uc usecase.RoleUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{roleUseCase: uc, logger: logger}
}

// ListRoles обрабатывает GET /roles
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleUseCase.ListRoles(r.Context())
	if err != nil {
		respondWithError(w, err, h.logger)
		return
	}
	respondSuccess(w, http.StatusOK, "Roles retrieved successfully", toRoleResponses(roles), h.logger)
}

// ListUserRoles обрабатывает GET /users/{id}/roles
func (h *RoleHandler) ListUserRoles(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	roles, err := h.roleUseCase.ListUserRoles(r.Context(), userID)
	if err != nil {
		h.logger.Warn("failed to list user roles", "user_id", userID, "error", err)
		respondWithError(w, err, h.logger)
		return
	}
	respondSuccess(w, http.StatusOK,
		fmt.Sprintf("Roles for user with id %s retrieved successfully", userID),
		toRoleResponses(roles), h.logger)
}

// AssignRole обрабатывает PUT /users/{id}/roles/{roleId}, повторное назначение не ошибка
func (h *RoleHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, roleID := userIDFrom(r.Context()), roleIDFrom(r.Context())

	if err := h.roleUseCase.AssignRole(r.Context(), userID, roleID); err != nil {
		h.logger.Warn("failed to assign role", "user_id", userID, "role_id", roleID, "error", err)
		respondWithError(w, err, h.logger)
		return
	}

	h.logger.Info("role assigned", "user_id", userID, "role_id", roleID)
	respondSuccess(w, http.StatusOK,
		fmt.Sprintf("Role %s assigned to user with id %s", roleID, userID),
		emptyObject, h.logger)
}

// RevokeRole обрабатывает DELETE /users/{id}/roles/{roleId}
func (h *RoleHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, roleID := userIDFrom(r.Context()), roleIDFrom(r.Context())

	if err := h.roleUseCase.RevokeRole(r.Context(), userID, roleID); err != nil {
		h.logger.Warn("failed to revoke role", "user_id", userID, "role_id", roleID, "error", err)
		respondWithError(w, err, h.logger)
		return
	}

	h.logger.Info("role revoked", "user_id", userID, "role_id", roleID)
	respondSuccess(w, http.StatusOK,
		fmt.Sprintf("Role %s revoked from user with id %s", roleID, userID),
		emptyObject, h.logger)
}
