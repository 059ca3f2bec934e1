package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout каноничный формат дат в ответах API (UTC, миллисекунды)
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	FirstName string     `json:"first_name" db:"first_name"`
	LastName  string     `json:"last_name" db:"last_name"`
	Email     string     `json:"email" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"` // nil до первого изменения
}

// UserInput данные для создания и обновления пользователя
type UserInput struct {
	FirstName string `json:"firstName" validate:"required,personalname"`
	LastName  string `json:"lastName" validate:"required,personalname"`
	Email     string `json:"email" validate:"required,email,max=254"`
}

// FormatTimestamp приводит время к каноничному строковому виду
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
