package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/modulehq/platform-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FirstName    *string        `gorm:"column:first_name"`
	LastName     *string        `gorm:"column:last_name"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'user'"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// IsSuperAdmin reports whether the user holds the platform super admin role.
func (u User) IsSuperAdmin() bool {
	return u.Role == enums.UserRoleSuperAdmin
}
