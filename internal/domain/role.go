package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role справочник ролей, заполняется статически миграцией
type Role struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// UserRole связующая модель Many-to-Many между User и Role,
// соответствует таблице user_roles в бд
type UserRole struct {
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `json:"role_id" gorm:"type:uuid;primaryKey"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
