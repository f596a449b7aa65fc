package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/modulehq/platform-backend/pkg/enums"
)

// Payment records one gateway charge tied to a subscription purchase.
type Payment struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index"`
	SubscriptionID    *uuid.UUID          `gorm:"column:subscription_id;type:uuid;index"`
	Amount            int64               `gorm:"column:amount;not null"`
	Currency          string              `gorm:"column:currency;not null;default:'RUB'"`
	Provider          string              `gorm:"column:provider;not null"`
	ProviderPaymentID string              `gorm:"column:provider_payment_id;not null;uniqueIndex"`
	Status            enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	Metadata          json.RawMessage     `gorm:"column:metadata;type:jsonb"`
	PaidAt            *time.Time          `gorm:"column:paid_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
