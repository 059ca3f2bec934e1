// Package storagetest содержит in-memory реализации портов хранилища для тестов.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/google/uuid"
)

// UserStore in-memory реализация ports.UserStorage.
// Уникальность email проверяется так же, как это делает ограничение в PostgreSQL.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	now   func() time.Time

	// Err, если задан, возвращается из каждого метода
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]domain.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Seed добавляет пользователей напрямую, минуя проверки
func (s *UserStore) Seed(users ...domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
	}
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserStore) ListAll(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string, excludeID *uuid.UUID) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []domain.User{}
	for _, u := range s.users {
		if u.Email != email {
			continue
		}
		if excludeID != nil && u.ID == *excludeID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *UserStore) Create(_ context.Context, firstName, lastName, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.emailTaken(email, uuid.Nil) {
		return nil, domain.NewConflictError(domain.EmailConflictMessage(email), nil)
	}
	u := domain.User{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *UserStore) Update(_ context.Context, id uuid.UUID, firstName, lastName, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	if s.emailTaken(email, id) {
		return nil, domain.NewConflictError(domain.EmailConflictMessage(email), nil)
	}
	updated := s.now()
	if !updated.After(u.CreatedAt) {
		updated = u.CreatedAt.Add(time.Microsecond)
	}
	u.FirstName, u.LastName, u.Email, u.UpdatedAt = firstName, lastName, email, &updated
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	if _, ok := s.users[id]; !ok {
		return 0, nil
	}
	delete(s.users, id)
	return 1, nil
}

func (s *UserStore) Ping(_ context.Context) error {
	return s.Err
}

func (s *UserStore) emailTaken(email string, except uuid.UUID) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != except {
			return true
		}
	}
	return false
}

// RoleStore in-memory реализация ports.RoleStorage
type RoleStore struct {
	mu       sync.Mutex
	roles    map[uuid.UUID]domain.Role
	assigned map[domain.UserRole]struct{}
}

func NewRoleStore(roles ...domain.Role) *RoleStore {
	s := &RoleStore{
		roles:    make(map[uuid.UUID]domain.Role),
		assigned: make(map[domain.UserRole]struct{}),
	}
	for _, r := range roles {
		s.roles[r.ID] = r
	}
	return s
}

func (s *RoleStore) ListRoles(_ context.Context) ([]domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RoleStore) FindRoleByID(_ context.Context, id uuid.UUID) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *RoleStore) ListUserRoles(_ context.Context, userID uuid.UUID) ([]domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Role{}
	for ur := range s.assigned {
		if ur.UserID == userID {
			out = append(out, s.roles[ur.RoleID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RoleStore) AssignRole(_ context.Context, userID, roleID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assigned[domain.UserRole{UserID: userID, RoleID: roleID}] = struct{}{}
	return nil
}

func (s *RoleStore) RevokeRole(_ context.Context, userID, roleID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.UserRole{UserID: userID, RoleID: roleID}
	if _, ok := s.assigned[key]; !ok {
		return 0, nil
	}
	delete(s.assigned, key)
	return 1, nil
}
