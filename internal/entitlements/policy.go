package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/internal/billing"
	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
)

var (
	// ErrSubscriptionRequired means the tenant holds no current active subscription.
	ErrSubscriptionRequired = pkgerrors.New(pkgerrors.CodePaymentRequired, "active subscription required")
	// ErrSubscriptionExpired means the current subscription exists but is past its expiry.
	ErrSubscriptionExpired = pkgerrors.New(pkgerrors.CodePaymentRequired, "subscription expired")
)

type subscriptionFinder interface {
	FindCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
}

// Policy answers subscription and module entitlement questions. It is
// read-only over the billing registry and the static catalogs.
type Policy struct {
	subscriptions subscriptionFinder
	now           func() time.Time
}

// PolicyParams bundles the dependencies required to build a policy.
type PolicyParams struct {
	SubscriptionRepo subscriptionFinder
	Now              func() time.Time
}

// NewPolicy constructs the entitlement policy.
func NewPolicy(params PolicyParams) (*Policy, error) {
	if params.SubscriptionRepo == nil {
		return nil, fmt.Errorf("subscription repository is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Policy{
		subscriptions: params.SubscriptionRepo,
		now:           now,
	}, nil
}

// IsSuperAdmin reports whether the user bypasses all subscription gating.
func (p *Policy) IsSuperAdmin(user *models.User) bool {
	return user != nil && user.IsSuperAdmin()
}

// HasActiveSubscription returns nil when the user's tenant holds a current,
// unexpired, active subscription. Super admins always pass.
func (p *Policy) HasActiveSubscription(ctx context.Context, user *models.User) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if user.IsSuperAdmin() {
		return nil
	}

	sub, err := p.currentSubscription(ctx, user.TenantID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status != enums.SubscriptionStatusActive {
		return ErrSubscriptionRequired
	}
	if sub.IsExpired(p.now()) {
		return ErrSubscriptionExpired
	}
	return nil
}

// IsModuleEnabled reports whether the user may use the module. Super admins
// see everything; otherwise the grant comes from the current subscription,
// with the AllModules flag overriding the per-module map.
func (p *Policy) IsModuleEnabled(ctx context.Context, user *models.User, slug string) (bool, error) {
	if user == nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if user.IsSuperAdmin() {
		return true, nil
	}

	sub, err := p.currentSubscription(ctx, user.TenantID)
	if err != nil {
		return false, err
	}
	if sub == nil || sub.Status != enums.SubscriptionStatusActive || sub.IsExpired(p.now()) {
		return false, nil
	}
	if sub.AllModules {
		return true, nil
	}
	return sub.Modules.Enabled(slug), nil
}

// CurrentPlanView returns the subscription view shown on the billing page.
// Super admins get a synthetic unlimited view without touching the registry.
func (p *Policy) CurrentPlanView(ctx context.Context, user *models.User) (*billing.SubscriptionDTO, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if user.IsSuperAdmin() {
		return superAdminPlanView(user, p.now()), nil
	}

	sub, err := p.currentSubscription(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription")
	}
	return billing.SubscriptionFromModel(sub), nil
}

func (p *Policy) currentSubscription(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	sub, err := p.subscriptions.FindCurrentByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup current subscription")
	}
	return sub, nil
}

func superAdminPlanView(user *models.User, now time.Time) *billing.SubscriptionDTO {
	return &billing.SubscriptionDTO{
		TenantID:   user.TenantID,
		Plan:       enums.PlanFree,
		Modules:    map[string]bool{},
		AllModules: true,
		Status:     enums.SubscriptionStatusActive,
		IsCurrent:  true,
		StartedAt:  now,
	}
}
