package tenants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/pkg/db/models"
)

// Repository exposes tenant-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tenants repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new tenant and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateTenantDTO) (*models.Tenant, error) {
	tenant := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// FindByID loads a tenant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List returns every tenant, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}
