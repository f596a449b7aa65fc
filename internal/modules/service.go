package modules

import (
	"context"
	"fmt"

	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
	"github.com/modulehq/platform-backend/pkg/gateway"
)

// ModuleView is the transport shape of a catalog module for one user.
type ModuleView struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	PriceMonthly int64  `json:"price_monthly"`
	PriceDisplay string `json:"price_display"`
	Availability string `json:"availability"`
	IsEnabled    bool   `json:"is_enabled"`
}

// StatusView reports the runtime state of one module for one user.
type StatusView struct {
	Slug      string             `json:"slug"`
	Status    enums.ModuleStatus `json:"status"`
	IsEnabled bool               `json:"is_enabled"`
	Healthy   bool               `json:"healthy"`
}

type entitlementChecker interface {
	IsModuleEnabled(ctx context.Context, user *models.User, slug string) (bool, error)
}

// Service defines the behavior needed by the modules controller.
type Service interface {
	List(ctx context.Context, user *models.User) ([]ModuleView, error)
	Status(ctx context.Context, user *models.User, slug string) (*StatusView, error)
}

type service struct {
	policy entitlementChecker
}

// ServiceParams bundles the dependencies required to build a modules service.
type ServiceParams struct {
	Policy entitlementChecker
}

// NewService constructs a modules service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Policy == nil {
		return nil, fmt.Errorf("entitlement policy is required")
	}
	return &service{policy: params.Policy}, nil
}

func (s *service) List(ctx context.Context, user *models.User) ([]ModuleView, error) {
	views := make([]ModuleView, 0, len(Catalog))
	for _, m := range Catalog {
		enabled, err := s.policy.IsModuleEnabled(ctx, user, m.Slug)
		if err != nil {
			return nil, err
		}
		views = append(views, ModuleView{
			Slug:         m.Slug,
			Name:         m.Name,
			Description:  m.Description,
			Icon:         m.Icon,
			PriceMonthly: m.PriceMonthly,
			PriceDisplay: gateway.FormatAmount(m.PriceMonthly),
			Availability: m.Availability(),
			IsEnabled:    enabled,
		})
	}
	return views, nil
}

// Status is a health stub until modules report real runtime state. Enabled
// modules read as running and healthy, everything else as locked.
func (s *service) Status(ctx context.Context, user *models.User, slug string) (*StatusView, error) {
	if _, ok := BySlug(slug); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown module %q", slug))
	}

	enabled, err := s.policy.IsModuleEnabled(ctx, user, slug)
	if err != nil {
		return nil, err
	}

	status := enums.ModuleStatusLocked
	if enabled {
		status = enums.ModuleStatusRunning
	}
	return &StatusView{
		Slug:      slug,
		Status:    status,
		IsEnabled: enabled,
		Healthy:   enabled,
	}, nil
}
