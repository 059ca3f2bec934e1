package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

// runWorker потребляет события пользователей и складывает их в архив
func (a *App) runWorker(ctx context.Context) error {
	if a.Consumer == nil {
		return errors.New("worker mode requires RABBITMQ_URL")
	}

	archive := a.Archive
	if archive == nil {
		a.logger.Warn("MINIO_ENDPOINT is not set, events will only be logged")
		archive = logArchive{logger: a.logger}
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	consumerDone, err := a.Consumer.StartConsumingUserEvents(workerCtx, archiveEventHandler(archive, a.logger))
	if err != nil {
		return fmt.Errorf("start rabbitmq consumer: %w", err)
	}

	a.logger.Info("worker started, waiting for user events")

	// воркер завершается с ошибкой, если брокер перестал доставлять сообщения,
	// чтобы оркестратор мог его перезапустить
	select {
	case <-ctx.Done():
		a.logger.Info("worker stopped")
		return nil
	case err, ok := <-consumerDone:
		if ok && err != nil {
			return fmt.Errorf("rabbitmq consumer stopped: %w", err)
		}
		if ctx.Err() != nil {
			a.logger.Info("worker stopped")
			return nil
		}
		return errors.New("rabbitmq consumer stopped unexpectedly")
	}
}

// archiveEventHandler сохраняет событие в архиве под ключом payload.ArchiveKey().
// Ошибка архива возвращается, чтобы сообщение вернулось в очередь.
func archiveEventHandler(archive ports.EventArchive, logger *slog.Logger) func(context.Context, payloads.UserEventPayload) error {
	return func(ctx context.Context, event payloads.UserEventPayload) error {
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.EventID, err)
		}

		location, err := archive.ArchiveEvent(ctx, event.ArchiveKey(), body)
		if err != nil {
			return fmt.Errorf("archive event %s: %w", event.EventID, err)
		}

		logger.Info("user event archived",
			"event_id", event.EventID,
			"type", event.Type,
			"user_id", event.UserID,
			"location", location,
		)
		return nil
	}
}

// logArchive используется без MinIO: событие только пишется в лог
type logArchive struct {
	logger *slog.Logger
}

func (l logArchive) ArchiveEvent(_ context.Context, key string, body []byte) (string, error) {
	l.logger.Info("event archive disabled", "key", key, "size", len(body))
	return "", nil
}
