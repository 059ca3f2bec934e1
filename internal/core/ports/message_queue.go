package ports

import (
	"context"

	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// UserEventPublisher публикует события жизненного цикла пользователя.
// Используется usecase-слоем после успешной мутации.
type UserEventPublisher interface {
	PublishUserEvent(ctx context.Context, event payloads.UserEventPayload) error
}

// UserEventConsumer потребляет события пользователей, используется воркером
type UserEventConsumer interface {
	// StartConsumingUserEvents начинает прослушивание очереди,
	// handler вызывается для каждого полученного сообщения.
	// Возвращаемый канал получает ошибку, если брокер прекратил доставку,
	// и закрывается, когда потребитель остановлен.
	StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) (<-chan error, error)
}

// EventArchive сохраняет обработанные события во внешнее хранилище (S3 / MinIO)
type EventArchive interface {
	ArchiveEvent(ctx context.Context, key string, body []byte) (string, error)
}
