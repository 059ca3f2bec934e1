package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
	"github.com/google/uuid"
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	publisher   ports.UserEventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewUserUseCase создает новый экземпляр UserUseCase.
// publisher может быть nil, тогда события не публикуются.
func NewUserUseCase(
	userStorage ports.UserStorage,
	publisher ports.UserEventPublisher,
	logger *slog.Logger,
) UserUseCase {
	return &userUseCase{
		userStorage: userStorage,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// ListUsers получает всех пользователей
func (uc *userUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := uc.userStorage.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: list users: %w", err)
	}
	return users, nil
}

// GetUser получает пользователя по ID
func (uc *userUseCase) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := uc.userStorage.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: get user %s: %w", id, err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(domain.UserNotFoundMessage(id))
	}
	return user, nil
}

// CreateUser создает пользователя, если email ещё не занят.
// Предварительная проверка лишь даёт понятный ответ; гарантию уникальности
// даёт ограничение users_email_key, его нарушение хранилище отдаёт как конфликт.
func (uc *userUseCase) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	sameEmail, err := uc.userStorage.FindByEmail(ctx, in.Email, nil)
	if err != nil {
		return nil, fmt.Errorf("usecase: check email: %w", err)
	}
	if len(sameEmail) > 0 {
		return nil, domain.NewConflictError(domain.EmailConflictMessage(in.Email), nil)
	}

	user, err := uc.userStorage.Create(ctx, in.FirstName, in.LastName, in.Email)
	if err != nil {
		return nil, fmt.Errorf("usecase: create user: %w", err)
	}

	uc.publish(ctx, payloads.UserCreated, user.ID, user.Email)
	return user, nil
}

// UpdateUser обновляет пользователя: 404 имеет приоритет над 409
func (uc *userUseCase) UpdateUser(ctx context.Context, id uuid.UUID, in domain.UserInput) (*domain.User, error) {
	if _, err := uc.GetUser(ctx, id); err != nil {
		return nil, err
	}

	sameEmail, err := uc.userStorage.FindByEmail(ctx, in.Email, &id)
	if err != nil {
		return nil, fmt.Errorf("usecase: check email: %w", err)
	}
	if len(sameEmail) > 0 {
		return nil, domain.NewConflictError(domain.EmailConflictMessage(in.Email), nil)
	}

	user, err := uc.userStorage.Update(ctx, id, in.FirstName, in.LastName, in.Email)
	if err != nil {
		return nil, fmt.Errorf("usecase: update user %s: %w", id, err)
	}
	if user == nil {
		// пользователь удалён между проверкой и обновлением
		return nil, domain.NewNotFoundError(domain.UserNotFoundMessage(id))
	}

	uc.publish(ctx, payloads.UserUpdated, user.ID, user.Email)
	return user, nil
}

// DeleteUser удаляет пользователя; повторное удаление даёт 404
func (uc *userUseCase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := uc.GetUser(ctx, id)
	if err != nil {
		return err
	}

	affected, err := uc.userStorage.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: delete user %s: %w", id, err)
	}
	if affected == 0 {
		return domain.NewNotFoundError(domain.UserNotFoundMessage(id))
	}

	uc.publish(ctx, payloads.UserDeleted, id, user.Email)
	return nil
}

// publish отправляет событие, ошибка публикации не влияет на ответ клиенту
func (uc *userUseCase) publish(ctx context.Context, t payloads.EventType, userID uuid.UUID, email string) {
	if uc.publisher == nil {
		return
	}
	event := payloads.NewUserEvent(t, userID, email, uc.now())
	if err := uc.publisher.PublishUserEvent(ctx, event); err != nil {
		uc.logger.Error("failed to publish user event",
			"event_id", event.EventID,
			"type", event.Type,
			"user_id", userID,
			"error", err,
		)
	}
}
