package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	"github.com/modulehq/platform-backend/pkg/gateway"
)

// PlanDTO is the transport shape of a catalog plan.
type PlanDTO struct {
	ID           enums.PlanID `json:"id"`
	Name         string       `json:"name"`
	PriceMonthly int64        `json:"price_monthly"`
	PriceDisplay string       `json:"price_display"`
	Modules      []string     `json:"modules"`
	AllModules   bool         `json:"all_modules"`
}

// SubscriptionDTO is the transport shape of a subscription row.
type SubscriptionDTO struct {
	ID           uuid.UUID                `json:"id"`
	TenantID     uuid.UUID                `json:"tenant_id"`
	Plan         enums.PlanID             `json:"plan"`
	Modules      map[string]bool          `json:"modules"`
	AllModules   bool                     `json:"all_modules"`
	PriceMonthly int64                    `json:"price_monthly"`
	Status       enums.SubscriptionStatus `json:"status"`
	IsCurrent    bool                     `json:"is_current"`
	StartedAt    time.Time                `json:"started_at"`
	ExpiresAt    *time.Time               `json:"expires_at,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// PaymentDTO is the transport shape of a payment row.
type PaymentDTO struct {
	ID                uuid.UUID           `json:"id"`
	SubscriptionID    *uuid.UUID          `json:"subscription_id,omitempty"`
	Amount            int64               `json:"amount"`
	AmountDisplay     string              `json:"amount_display"`
	Currency          string              `json:"currency"`
	Provider          string              `json:"provider"`
	ProviderPaymentID string              `json:"provider_payment_id"`
	Status            enums.PaymentStatus `json:"status"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

// PaymentPage carries one page of the payment history plus the next cursor.
type PaymentPage struct {
	Payments   []PaymentDTO `json:"payments"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// UpgradeResponse is returned after a successful upgrade initiation.
type UpgradeResponse struct {
	Subscription    SubscriptionDTO `json:"subscription"`
	Payment         PaymentDTO      `json:"payment"`
	ConfirmationURL string          `json:"confirmation_url"`
}

func PlanFromCatalog(p Plan) PlanDTO {
	slugs := p.Modules
	if p.AllModules {
		slugs = nil
	}
	if slugs == nil {
		slugs = []string{}
	}
	return PlanDTO{
		ID:           p.ID,
		Name:         p.Name,
		PriceMonthly: p.PriceMonthly,
		PriceDisplay: gateway.FormatAmount(p.PriceMonthly),
		Modules:      append([]string(nil), slugs...),
		AllModules:   p.AllModules,
	}
}

func SubscriptionFromModel(s *models.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}

	mods := map[string]bool{}
	for slug, on := range s.Modules {
		mods[slug] = on
	}

	return &SubscriptionDTO{
		ID:           s.ID,
		TenantID:     s.TenantID,
		Plan:         s.Plan,
		Modules:      mods,
		AllModules:   s.AllModules,
		PriceMonthly: s.PriceMonthly,
		Status:       s.Status,
		IsCurrent:    s.IsCurrent,
		StartedAt:    s.StartedAt,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
	}
}

func PaymentFromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}

	return &PaymentDTO{
		ID:                p.ID,
		SubscriptionID:    p.SubscriptionID,
		Amount:            p.Amount,
		AmountDisplay:     gateway.FormatAmount(p.Amount),
		Currency:          p.Currency,
		Provider:          p.Provider,
		ProviderPaymentID: p.ProviderPaymentID,
		Status:            p.Status,
		PaidAt:            p.PaidAt,
		CreatedAt:         p.CreatedAt,
	}
}
