package usecase

import (
	"context"
	"fmt"

	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
)

// roleUseCase implements RoleUseCase
type roleUseCase struct {
	roleStorage ports.RoleStorage
	userStorage ports.UserStorage
}

// NewRoleUseCase создает новый экземпляр RoleUseCase
func NewRoleUseCase(roleStorage ports.RoleStorage, userStorage ports.UserStorage) RoleUseCase {
	return &roleUseCase{roleStorage: roleStorage, userStorage: userStorage}
}

func (uc *roleUseCase) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := uc.roleStorage.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: list roles: %w", err)
	}
	return roles, nil
}

func (uc *roleUseCase) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	if err := uc.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	roles, err := uc.roleStorage.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: list roles of user %s: %w", userID, err)
	}
	return roles, nil
}

// AssignRole назначает роль; сначала проверяется пользователь, затем роль
func (uc *roleUseCase) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	if err := uc.ensureUser(ctx, userID); err != nil {
		return err
	}
	if err := uc.ensureRole(ctx, roleID); err != nil {
		return err
	}
	if err := uc.roleStorage.AssignRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("usecase: assign role %s to user %s: %w", roleID, userID, err)
	}
	return nil
}

func (uc *roleUseCase) RevokeRole(ctx context.Context, userID, roleID uuid.UUID) error {
	if err := uc.ensureUser(ctx, userID); err != nil {
		return err
	}
	if err := uc.ensureRole(ctx, roleID); err != nil {
		return err
	}
	removed, err := uc.roleStorage.RevokeRole(ctx, userID, roleID)
	if err != nil {
		return fmt.Errorf("usecase: revoke role %s from user %s: %w", roleID, userID, err)
	}
	if removed == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("Role %s is not assigned to user with id %s", roleID, userID))
	}
	return nil
}

func (uc *roleUseCase) ensureUser(ctx context.Context, id uuid.UUID) error {
	user, err := uc.userStorage.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: get user %s: %w", id, err)
	}
	if user == nil {
		return domain.NewNotFoundError(domain.UserNotFoundMessage(id))
	}
	return nil
}

func (uc *roleUseCase) ensureRole(ctx context.Context, id uuid.UUID) error {
	role, err := uc.roleStorage.FindRoleByID(ctx, id)
	if err != nil {
		return fmt.Errorf("usecase: get role %s: %w", id, err)
	}
	if role == nil {
		return domain.NewNotFoundError(domain.RoleNotFoundMessage(id))
	}
	return nil
}
