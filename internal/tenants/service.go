package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/pkg/db/models"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
)

// Service defines the behavior needed by the tenants controller.
type Service interface {
	List(ctx context.Context) ([]TenantAdminView, error)
	Get(ctx context.Context, id uuid.UUID) (*TenantAdminView, error)
}

type service struct {
	tenants       tenantRepository
	users         userCounter
	subscriptions currentSubscriptionFinder
}

type tenantRepository interface {
	List(ctx context.Context) ([]models.Tenant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type userCounter interface {
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type currentSubscriptionFinder interface {
	FindCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
}

// ServiceParams bundles the dependencies required to build a tenants service.
type ServiceParams struct {
	TenantRepo       tenantRepository
	UserRepo         userCounter
	SubscriptionRepo currentSubscriptionFinder
}

// NewService constructs a tenant admin service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TenantRepo == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SubscriptionRepo == nil {
		return nil, fmt.Errorf("subscription repository is required")
	}
	return &service{
		tenants:       params.TenantRepo,
		users:         params.UserRepo,
		subscriptions: params.SubscriptionRepo,
	}, nil
}

func (s *service) List(ctx context.Context) ([]TenantAdminView, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tenants")
	}

	views := make([]TenantAdminView, 0, len(tenants))
	for i := range tenants {
		view, err := s.buildView(ctx, &tenants[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TenantAdminView, error) {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant")
	}
	return s.buildView(ctx, tenant)
}

func (s *service) buildView(ctx context.Context, tenant *models.Tenant) (*TenantAdminView, error) {
	count, err := s.users.CountByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count tenant users")
	}

	view := TenantAdminView{
		TenantDTO:  *FromModel(tenant),
		UsersCount: count,
	}

	sub, err := s.subscriptions.FindCurrentByTenant(ctx, tenant.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup current subscription")
		}
	} else if sub != nil {
		plan := sub.Plan
		view.CurrentPlan = &plan
	}

	return &view, nil
}
