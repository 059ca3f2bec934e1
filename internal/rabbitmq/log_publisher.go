package rabbitmq

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// LogPublisher используется, когда RABBITMQ_URL не задан: события только пишутся в лог
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher создает публикатор, который пишет события в лог
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// PublishUserEvent записывает событие в лог и никогда не возвращает ошибку
func (p *LogPublisher) PublishUserEvent(_ context.Context, event payloads.UserEventPayload) error {
	p.logger.Info("user event (rabbitmq disabled)",
		"event_id", event.EventID,
		"type", event.Type,
		"user_id", event.UserID,
	)
	return nil
}
