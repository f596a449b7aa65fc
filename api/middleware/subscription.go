package middleware

import (
	"context"
	"net/http"

	"github.com/modulehq/platform-backend/api/responses"
	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/logger"
)

type subscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, user *models.User) error
}

// RequireSubscription blocks tenants without a current active subscription.
// Runs after Auth so the user is already on the context.
func RequireSubscription(policy subscriptionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := policy.HasActiveSubscription(r.Context(), UserFromContext(r.Context())); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
