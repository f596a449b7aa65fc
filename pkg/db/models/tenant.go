package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents the canonical workspace entity.
type Tenant struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Domain       *string   `gorm:"column:domain;uniqueIndex"`
	LogoURL      *string   `gorm:"column:logo_url"`
	PrimaryColor string    `gorm:"column:primary_color;not null;default:'#FF6B00'"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
