package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/pkg/config"
	"github.com/modulehq/platform-backend/pkg/db"
	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
	"github.com/modulehq/platform-backend/pkg/gateway"
	"github.com/modulehq/platform-backend/pkg/pagination"
)

// subscriptionTerm is how long a purchased subscription runs before renewal.
const subscriptionTerm = 30 * 24 * time.Hour

// Service defines the behavior needed by the billing controller.
type Service interface {
	Plans() []PlanDTO
	Upgrade(ctx context.Context, user *models.User, plan enums.PlanID) (*UpgradeResponse, error)
	ActivateSubscription(ctx context.Context, providerPaymentID string) error
	ListPayments(ctx context.Context, user *models.User, params pagination.Params) (*PaymentPage, error)
}

type service struct {
	db         *db.Client
	gateway    gateway.Provider
	paymentCfg config.PaymentConfig
}

// ServiceParams bundles the dependencies required to build a billing service.
type ServiceParams struct {
	DB            *db.Client
	Gateway       gateway.Provider
	PaymentConfig config.PaymentConfig
}

// NewService constructs a billing service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	return &service{
		db:         params.DB,
		gateway:    params.Gateway,
		paymentCfg: params.PaymentConfig,
	}, nil
}

func (s *service) Plans() []PlanDTO {
	out := make([]PlanDTO, 0, len(Plans))
	for _, p := range Plans {
		out = append(out, PlanFromCatalog(p))
	}
	return out
}

func (s *service) Upgrade(ctx context.Context, user *models.User, plan enums.PlanID) (*UpgradeResponse, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if user.IsSuperAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "super admin accounts have no subscription to upgrade")
	}

	catalogPlan, ok := PlanByID(plan)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown plan %q", plan))
	}
	if catalogPlan.ID == enums.PlanFree {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot upgrade to the free plan")
	}

	now := time.Now().UTC()
	expires := now.Add(subscriptionTerm)

	sub := &models.Subscription{
		TenantID:     user.TenantID,
		Plan:         catalogPlan.ID,
		Modules:      catalogPlan.ModuleFlags(),
		AllModules:   catalogPlan.AllModules,
		PriceMonthly: catalogPlan.PriceMonthly,
		Status:       enums.SubscriptionStatusPending,
		IsCurrent:    false,
		StartedAt:    now,
		ExpiresAt:    &expires,
	}

	payment := &models.Payment{
		TenantID: user.TenantID,
		Amount:   catalogPlan.PriceMonthly,
		Currency: s.paymentCfg.Currency,
		Provider: s.gateway.Name(),
		Status:   enums.PaymentStatusPending,
	}
	payment.ID = uuid.New()

	ref, err := s.gateway.InitiatePayment(ctx, gateway.PaymentRequest{
		PaymentID:   payment.ID,
		TenantID:    user.TenantID,
		Amount:      catalogPlan.PriceMonthly,
		Currency:    s.paymentCfg.Currency,
		Description: fmt.Sprintf("%s plan, 30 days", catalogPlan.Name),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initiate payment")
	}
	payment.ProviderPaymentID = ref.ProviderPaymentID

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if err := repo.CreateSubscription(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subscription")
		}
		subID := sub.ID
		payment.SubscriptionID = &subID
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UpgradeResponse{
		Subscription:    *SubscriptionFromModel(sub),
		Payment:         *PaymentFromModel(payment),
		ConfirmationURL: ref.ConfirmationURL,
	}, nil
}

func (s *service) ActivateSubscription(ctx context.Context, providerPaymentID string) error {
	if providerPaymentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "provider payment id is required")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		payment, err := repo.FindPaymentByProviderID(ctx, providerPaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup payment")
		}
		if payment.Status == enums.PaymentStatusSucceeded {
			return nil
		}
		if payment.SubscriptionID == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "payment has no subscription")
		}

		now := time.Now().UTC()
		if err := repo.MarkPaymentSucceeded(ctx, payment.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark payment succeeded")
		}
		if err := repo.TransferCurrent(ctx, payment.TenantID, *payment.SubscriptionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transfer current subscription")
		}
		return nil
	})
}

func (s *service) ListPayments(ctx context.Context, user *models.User, params pagination.Params) (*PaymentPage, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if user.IsSuperAdmin() {
		return &PaymentPage{Payments: []PaymentDTO{}}, nil
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	repo := NewRepository(s.db.DB())
	rows, err := repo.ListPaymentsByTenant(ctx, user.TenantID, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}

	page := &PaymentPage{Payments: make([]PaymentDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		page.Payments = append(page.Payments, *PaymentFromModel(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}
