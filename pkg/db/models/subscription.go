package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/modulehq/platform-backend/pkg/db/types"
	"github.com/modulehq/platform-backend/pkg/enums"
)

// Subscription persists one plan purchase per tenant. Exactly one row per
// tenant carries is_current; it is flipped inside the activation transaction.
type Subscription struct {
	ID           uuid.UUID                `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null;index"`
	Plan         enums.PlanID             `gorm:"column:plan;not null"`
	Modules      dbtypes.ModuleFlags      `gorm:"column:modules;type:jsonb;not null"`
	AllModules   bool                     `gorm:"column:all_modules;not null;default:false"`
	PriceMonthly int64                    `gorm:"column:price_monthly;not null;default:0"`
	Status       enums.SubscriptionStatus `gorm:"column:status;not null;default:'pending'"`
	IsCurrent    bool                     `gorm:"column:is_current;not null;default:false"`
	AutoRenew    bool                     `gorm:"column:auto_renew;not null;default:false"`
	StartedAt    time.Time                `gorm:"column:started_at;not null"`
	ExpiresAt    *time.Time               `gorm:"column:expires_at"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the subscription has a bound expiry in the past.
func (s Subscription) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
