package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoleStorage реализует интерфейс ports.RoleStorage с использованием GORM
type GormRoleStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormRoleStorage создает новый экземпляр GormRoleStorage
func NewGormRoleStorage(db *gorm.DB, logger *slog.Logger) *GormRoleStorage {
	return &GormRoleStorage{db: db, logger: logger}
}

// ListRoles получает весь справочник ролей
func (s *GormRoleStorage) ListRoles(ctx context.Context) ([]domain.Role, error) {
	start := time.Now()

	var roles []domain.Role
	result := s.db.WithContext(ctx).Order("name").Find(&roles)
	if result.Error != nil {
		s.logger.Error("failed to list roles", "error", result.Error)
		return nil, domain.NewPersistenceError(result.Error)
	}

	s.logger.Info("listed roles", "count", len(roles), "duration_ms", time.Since(start).Milliseconds())
	return roles, nil
}

// FindRoleByID получает роль по ID, nil если роли нет
func (s *GormRoleStorage) FindRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	var role domain.Role
	result := s.db.WithContext(ctx).First(&role, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			s.logger.Warn("role not found by id", "role_id", id)
			return nil, nil
		}
		s.logger.Error("failed to get role by id", "role_id", id, "error", result.Error)
		return nil, domain.NewPersistenceError(result.Error)
	}
	return &role, nil
}

// ListUserRoles получает роли, назначенные пользователю
func (s *GormRoleStorage) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	start := time.Now()

	var roles []domain.Role
	result := s.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Find(&roles)
	if result.Error != nil {
		s.logger.Error("failed to list user roles", "user_id", userID, "error", result.Error)
		return nil, domain.NewPersistenceError(result.Error)
	}

	s.logger.Info("listed user roles",
		"user_id", userID,
		"count", len(roles),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return roles, nil
}

// AssignRole назначает роль пользователю, повторное назначение ничего не меняет
func (s *GormRoleStorage) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	result := s.db.WithContext(ctx).Exec(
		"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, roleID,
	)
	if result.Error != nil {
		s.logger.Error("failed to assign role", "user_id", userID, "role_id", roleID, "error", result.Error)
		return domain.NewPersistenceError(result.Error)
	}

	s.logger.Info("role assigned", "user_id", userID, "role_id", roleID, "inserted", result.RowsAffected)
	return nil
}

// RevokeRole снимает роль с пользователя, возвращает количество удалённых связей
func (s *GormRoleStorage) RevokeRole(ctx context.Context, userID, roleID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&domain.UserRole{})
	if result.Error != nil {
		s.logger.Error("failed to revoke role", "user_id", userID, "role_id", roleID, "error", result.Error)
		return 0, domain.NewPersistenceError(result.Error)
	}

	s.logger.Info("role revoked", "user_id", userID, "role_id", roleID, "deleted", result.RowsAffected)
	return result.RowsAffected, nil
}
