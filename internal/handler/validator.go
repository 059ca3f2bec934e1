package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	invalidUserIDMessage = "Provided user id is not valid"
	invalidRoleIDMessage = "Provided role id is not valid"
	invalidBodyMessage   = "Provided body is not valid"

	maxBodyBytes       = 1 << 20
	maxPersonalNameLen = 100
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	rawUserIDKey
	roleIDKey
	rawRoleIDKey
	userInputKey
)

// буквы любого алфавита, между ними по одному пробелу, апострофу, дефису или точке
var personalNameRe = regexp.MustCompile(`^[\p{L}\p{M}]+(?:[ '.\-][\p{L}\p{M}]+)*\.?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("personalname", isPersonalName); err != nil {
		panic(err)
	}
	return v
}

func isPersonalName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return utf8.RuneCountInString(name) <= maxPersonalNameLen && personalNameRe.MatchString(name)
}

// ValidateUserID проверяет, что {id} в пути является UUID (регистр hex не важен)
func ValidateUserID(logger *slog.Logger) func(http.Handler) http.Handler {
	return validatePathUUID("id", userIDKey, rawUserIDKey, invalidUserIDMessage, logger)
}

// ValidateRoleID проверяет, что {roleId} в пути является UUID
func ValidateRoleID(logger *slog.Logger) func(http.Handler) http.Handler {
	return validatePathUUID("roleId", roleIDKey, rawRoleIDKey, invalidRoleIDMessage, logger)
}

// validatePathUUID кладёт в контекст разобранный UUID и исходную строку из пути,
// исходная строка возвращается клиенту в сообщениях без изменений
func validatePathUUID(param string, key, rawKey ctxKey, message string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, param)
			// тег uuid принимает только нижний регистр
			if err := validate.Var(strings.ToLower(raw), "required,uuid"); err != nil {
				logger.Warn("invalid path parameter", "param", param, "value", raw)
				respondWithError(w, domain.NewValidationError(message), logger)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("invalid path parameter", "param", param, "value", raw, "error", err)
				respondWithError(w, domain.NewValidationError(message), logger)
				return
			}
			ctx := context.WithValue(r.Context(), key, id)
			ctx = context.WithValue(ctx, rawKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateUserBody разбирает и проверяет тело запроса пользователя.
// Неизвестные поля, лишние данные после объекта и неверные типы дают 400.
func ValidateUserBody(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, err := decodeUserInput(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err == nil {
				err = validate.Struct(in)
			}
			if err != nil {
				logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
				respondWithError(w, domain.NewValidationError(invalidBodyMessage), logger)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userInputKey, in)))
		})
	}
}

func decodeUserInput(body io.Reader) (domain.UserInput, error) {
	var in domain.UserInput
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return in, errors.New("unexpected data after JSON object")
	}
	return in, nil
}

func userIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

// rawUserIDFrom возвращает {id} в том виде, в каком он пришёл в пути
func rawUserIDFrom(ctx context.Context) string {
	raw, _ := ctx.Value(rawUserIDKey).(string)
	return raw
}

func roleIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(roleIDKey).(uuid.UUID)
	return id
}

func userInputFrom(ctx context.Context) domain.UserInput {
	in, _ := ctx.Value(userInputKey).(domain.UserInput)
	return in
}
