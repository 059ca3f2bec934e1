package usecase

import (
	"context"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
)

// UserUseCase определяет интерфейс бизнес-логики работы с пользователями.
// Порядок проверок во всех мутациях: существование -> уникальность email -> запись.
type UserUseCase interface {
	ListUsers(ctx context.Context) ([]domain.User, error)

	// GetUser возвращает domain.ErrNotFound, если пользователя нет
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// CreateUser возвращает domain.ErrConflict, если email уже занят
	CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error)

	UpdateUser(ctx context.Context, id uuid.UUID, in domain.UserInput) (*domain.User, error)

	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RoleUseCase определяет интерфейс работы со справочником ролей и их назначением
type RoleUseCase interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	ListUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	RevokeRole(ctx context.Context, userID, roleID uuid.UUID) error
}
