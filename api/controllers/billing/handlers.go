package billing

import (
	"context"
	"net/http"
	"strings"

	"github.com/modulehq/platform-backend/api/middleware"
	"github.com/modulehq/platform-backend/api/responses"
	"github.com/modulehq/platform-backend/api/validators"
	"github.com/modulehq/platform-backend/internal/billing"
	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
	"github.com/modulehq/platform-backend/pkg/logger"
	"github.com/modulehq/platform-backend/pkg/pagination"
)

type planViewer interface {
	CurrentPlanView(ctx context.Context, user *models.User) (*billing.SubscriptionDTO, error)
}

// CurrentSubscription returns the caller's current plan view.
func CurrentSubscription(policy planViewer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := policy.CurrentPlanView(r.Context(), middleware.UserFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"subscription": view})
	}
}

// Plans lists the purchasable plan catalog.
func Plans(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"plans": svc.Plans()})
	}
}

// Upgrade initiates a paid plan purchase for the caller's tenant.
func Upgrade(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		plan := strings.TrimSpace(r.URL.Query().Get("plan"))
		if plan == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "plan query parameter is required"))
			return
		}

		result, err := svc.Upgrade(r.Context(), middleware.UserFromContext(r.Context()), enums.PlanID(plan))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Payments returns one cursor page of the caller's payment history.
func Payments(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			Limit:  limit,
		}

		page, err := svc.ListPayments(r.Context(), middleware.UserFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
