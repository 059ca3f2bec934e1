package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind категория ошибки, определяющая HTTP-статус ответа
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "persistence"
	}
}

// HTTPStatus таблица соответствия категорий и HTTP-статусов
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error ошибка приложения. Message безопасно отдавать клиенту,
// Err хранит исходную причину (например, ошибку драйвера) только для логов.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по категории, чтобы работал errors.Is(err, ErrNotFound)
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Сентинелы для errors.Is
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrPersistence = &Error{Kind: KindPersistence}
)

// PersistenceMessage общий текст для непредвиденных ошибок хранилища
const PersistenceMessage = "Database Error"

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewConflictError(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func NewPersistenceError(cause error) *Error {
	return &Error{Kind: KindPersistence, Message: PersistenceMessage, Err: cause}
}

// KindOf возвращает категорию ошибки и сообщение для клиента.
// Неизвестные ошибки считаются ошибками хранилища.
func KindOf(err error) (Kind, string) {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Message == "" {
			return appErr.Kind, PersistenceMessage
		}
		return appErr.Kind, appErr.Message
	}
	return KindPersistence, PersistenceMessage
}

// UserNotFoundMessage текст ответа 404 для пользователя,
// id может быть uuid.UUID или строкой из пути запроса
func UserNotFoundMessage(id any) string {
	return fmt.Sprintf("User with id %s not found", id)
}

// EmailConflictMessage текст ответа 409 при повторяющемся email
func EmailConflictMessage(email string) string {
	return fmt.Sprintf("User with email %s already exists", email)
}

// RoleNotFoundMessage текст ответа 404 для роли
func RoleNotFoundMessage(id fmt.Stringer) string {
	return fmt.Sprintf("Role with id %s not found", id)
}
