package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

const userColumns = `id, first_name, last_name, email, created_at, updated_at`

const (
	sqlListUsers = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	sqlFindUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	sqlFindUsersByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	sqlFindUsersByEmailExcluding = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND id <> $2`

	sqlCreateUser = `
	INSERT INTO users (first_name, last_name, email)
	VALUES ($1, $2, $3)
	RETURNING ` + userColumns

	sqlUpdateUser = `
	UPDATE users
	SET first_name = $1,
	    last_name = $2,
	    email = $3,
	    updated_at = now()
	WHERE id = $4
	RETURNING ` + userColumns

	sqlDeleteUser = `DELETE FROM users WHERE id = $1`
)

// UserStorage реализует интерфейс ports.UserStorage с использованием sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// ListAll получает всех пользователей
func (s *UserStorage) ListAll(ctx context.Context) ([]domain.User, error) {
	start := time.Now()

	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, sqlListUsers); err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, domain.NewPersistenceError(err)
	}

	s.logger.Info("listed users successfully",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// FindByID получает пользователя по ID
func (s *UserStorage) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user, sqlFindUserByID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("user not found by id", "user_id", id)
			return nil, nil
		}
		s.logger.Error("failed to get user by id", "user_id", id, "error", err)
		return nil, domain.NewPersistenceError(err)
	}

	s.logger.Info("user retrieved by id",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// FindByEmail ищет пользователей с заданным email.
// excludeID используется при обновлении, чтобы не находить самого себя.
func (s *UserStorage) FindByEmail(ctx context.Context, email string, excludeID *uuid.UUID) ([]domain.User, error) {
	start := time.Now()

	users := []domain.User{}
	var err error
	if excludeID != nil {
		err = s.db.SelectContext(ctx, &users, sqlFindUsersByEmailExcluding, email, *excludeID)
	} else {
		err = s.db.SelectContext(ctx, &users, sqlFindUsersByEmail, email)
	}
	if err != nil {
		s.logger.Error("failed to get users by email", "error", err)
		return nil, domain.NewPersistenceError(err)
	}

	s.logger.Info("users retrieved by email",
		"found", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, nil
}

// Create сохраняет нового пользователя, id и created_at генерирует база
func (s *UserStorage) Create(ctx context.Context, firstName, lastName, email string) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	if err := s.db.GetContext(ctx, &user, sqlCreateUser, firstName, lastName, email); err != nil {
		s.logger.Error("failed to insert user", "error", err)
		return nil, mapWriteError(err, email)
	}

	s.logger.Info("user created successfully",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// Update обновляет все поля пользователя и проставляет updated_at
func (s *UserStorage) Update(ctx context.Context, id uuid.UUID, firstName, lastName, email string) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.GetContext(ctx, &user, sqlUpdateUser, firstName, lastName, email, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("user to update not found", "user_id", id)
			return nil, nil
		}
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, mapWriteError(err, email)
	}

	s.logger.Info("user updated successfully",
		"user_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}

// Delete удаляет пользователя по ID
func (s *UserStorage) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, sqlDeleteUser, id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return 0, domain.NewPersistenceError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, domain.NewPersistenceError(err)
	}

	s.logger.Info("user deleted",
		"user_id", id,
		"affected", affected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return affected, nil
}

// Ping проверяет доступность базы для healthcheck
func (s *UserStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

// mapWriteError переводит нарушение уникальности email в конфликт,
// остальные ошибки драйвера скрываются за общей ошибкой хранилища
func mapWriteError(err error, email string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.NewConflictError(domain.EmailConflictMessage(email), err)
	}
	return domain.NewPersistenceError(err)
}
