package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	"github.com/modulehq/platform-backend/pkg/pagination"
)

// Repository exposes subscription and payment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a billing repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSubscription inserts a subscription row.
func (r *Repository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindSubscriptionByID loads a subscription by its UUID.
func (r *Repository) FindSubscriptionByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindCurrentByTenant returns the tenant's subscription holding the current flag.
func (r *Repository) FindCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_current", tenantID).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubscriptionsByTenant returns the tenant's subscriptions, newest first.
func (r *Repository) ListSubscriptionsByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// TransferCurrent clears the tenant's current flag and sets it on the target
// subscription, marking it active. Callers run this inside a transaction.
func (r *Repository) TransferCurrent(ctx context.Context, tenantID, subscriptionID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("tenant_id = ? AND is_current", tenantID).
		UpdateColumn("is_current", false).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]any{
			"is_current": true,
			"status":     enums.SubscriptionStatusActive,
		}).Error
}

// UpdateSubscriptionStatus moves a subscription to the provided status.
func (r *Repository) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// CreatePayment inserts a payment row.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindPaymentByProviderID loads a payment by the provider reference.
func (r *Repository) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaymentSucceeded flips the payment to succeeded and stamps paid_at.
func (r *Repository) MarkPaymentSucceeded(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  enums.PaymentStatusSucceeded,
			"paid_at": paidAt,
		}).Error
}

// ListPaymentsByTenant returns one cursor page of the tenant's payments,
// newest first. The extra row beyond the limit signals the next page.
func (r *Repository) ListPaymentsByTenant(ctx context.Context, tenantID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit))

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
