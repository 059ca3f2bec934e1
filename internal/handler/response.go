package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// envelope единый формат всех ответов API
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// emptyObject сериализуется в {}
var emptyObject = struct{}{}

// userResponse представление пользователя в ответе, даты в каноничном виде
type userResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt *string   `json:"updated_at"`
}

func toUserResponse(u domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: domain.FormatTimestamp(u.CreatedAt),
	}
	if u.UpdatedAt != nil {
		updated := domain.FormatTimestamp(*u.UpdatedAt)
		resp.UpdatedAt = &updated
	}
	return resp
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

type roleResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt *string   `json:"updated_at"`
}

func toRoleResponses(roles []domain.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		resp := roleResponse{ID: r.ID, Name: r.Name, CreatedAt: domain.FormatTimestamp(r.CreatedAt)}
		if r.UpdatedAt != nil {
			updated := domain.FormatTimestamp(*r.UpdatedAt)
			resp.UpdatedAt = &updated
		}
		out = append(out, resp)
	}
	return out
}

// respondWithJSON отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload any, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondSuccess отправляет ответ со status "success"
func respondSuccess(w http.ResponseWriter, code int, message string, data any, logger *slog.Logger) {
	respondWithJSON(w, code, envelope{Status: statusSuccess, Message: message, Data: data}, logger)
}

// respondWithError переводит ошибку в HTTP-статус и конверт с data: {}.
// Детали ошибки драйвера остаются только в логах.
func respondWithError(w http.ResponseWriter, err error, logger *slog.Logger) {
	kind, message := domain.KindOf(err)
	if kind == domain.KindPersistence {
		logger.Error("request failed", "error", err)
	}
	respondErrorMessage(w, kind.HTTPStatus(), message, logger)
}

func respondErrorMessage(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, envelope{Status: statusError, Message: message, Data: emptyObject}, logger)
}
