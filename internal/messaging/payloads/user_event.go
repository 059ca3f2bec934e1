package payloads

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType тип события пользователя
type EventType string

const (
	UserCreated EventType = "user.created"
	UserUpdated EventType = "user.updated"
	UserDeleted EventType = "user.deleted"
)

// UserEventPayload сообщение о событии пользователя, передаётся через RabbitMQ
type UserEventPayload struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       EventType `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserEvent собирает событие с новым идентификатором
func NewUserEvent(t EventType, userID uuid.UUID, email string, at time.Time) UserEventPayload {
	return UserEventPayload{
		EventID:    uuid.New(),
		Type:       t,
		UserID:     userID,
		Email:      email,
		OccurredAt: at.UTC(),
	}
}

// Valid проверяет обязательные поля события, полученного из очереди
func (p UserEventPayload) Valid() error {
	switch p.Type {
	case UserCreated, UserUpdated, UserDeleted:
	default:
		return fmt.Errorf("unknown event type %q", p.Type)
	}
	if p.UserID == uuid.Nil {
		return fmt.Errorf("event %s has empty user_id", p.EventID)
	}
	return nil
}

// ArchiveKey ключ объекта в архиве событий
func (p UserEventPayload) ArchiveKey() string {
	return fmt.Sprintf("user-events/%s/%s-%s.json",
		p.UserID, p.OccurredAt.UTC().Format("20060102T150405.000Z"), p.Type)
}
