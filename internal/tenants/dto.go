package tenants

import (
	"time"

	"github.com/google/uuid"

	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
)

// TenantDTO is the transport shape of a tenant workspace.
type TenantDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Domain       *string   `json:"domain,omitempty"`
	LogoURL      *string   `json:"logo_url,omitempty"`
	PrimaryColor string    `json:"primary_color"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TenantAdminView augments the tenant with the aggregates the admin listing shows.
type TenantAdminView struct {
	TenantDTO
	UsersCount  int64         `json:"users_count"`
	CurrentPlan *enums.PlanID `json:"current_plan,omitempty"`
}

// CreateTenantDTO holds the data required by the repo to persist a new tenant.
type CreateTenantDTO struct {
	Name         string
	Domain       *string
	LogoURL      *string
	PrimaryColor string
}

func FromModel(t *models.Tenant) *TenantDTO {
	if t == nil {
		return nil
	}

	return &TenantDTO{
		ID:           t.ID,
		Name:         t.Name,
		Domain:       t.Domain,
		LogoURL:      t.LogoURL,
		PrimaryColor: t.PrimaryColor,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (c CreateTenantDTO) ToModel() *models.Tenant {
	color := c.PrimaryColor
	if color == "" {
		color = "#FF6B00"
	}

	return &models.Tenant{
		ID:           uuid.New(),
		Name:         c.Name,
		Domain:       c.Domain,
		LogoURL:      c.LogoURL,
		PrimaryColor: color,
		IsActive:     true,
	}
}
