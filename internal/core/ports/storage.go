package ports

import (
	"context"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
)

// UserStorage определяет методы для взаимодействия с таблицей users.
// Каждый метод выполняет ровно один параметризованный запрос.
type UserStorage interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	// FindByID возвращает nil, nil если пользователь не найден
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// FindByEmail ищет пользователей с email, исключая excludeID если он задан
	FindByEmail(ctx context.Context, email string, excludeID *uuid.UUID) ([]domain.User, error)
	Create(ctx context.Context, firstName, lastName, email string) (*domain.User, error)
	// Update возвращает nil, nil если строка не была изменена
	Update(ctx context.Context, id uuid.UUID, firstName, lastName, email string) (*domain.User, error)
	// Delete возвращает количество удалённых строк (0 или 1)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Ping(ctx context.Context) error
}

// RoleStorage определяет методы для работы со справочником ролей и их назначением
type RoleStorage interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	FindRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	ListUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	RevokeRole(ctx context.Context, userID, roleID uuid.UUID) (int64, error)
}
