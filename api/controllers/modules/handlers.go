package modules

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/modulehq/platform-backend/api/middleware"
	"github.com/modulehq/platform-backend/api/responses"
	"github.com/modulehq/platform-backend/internal/modules"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
	"github.com/modulehq/platform-backend/pkg/logger"
)

// List returns the module catalog annotated with the caller's entitlements.
func List(svc modules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modules service unavailable"))
			return
		}

		views, err := svc.List(r.Context(), middleware.UserFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"modules": views})
	}
}

// Status reports the runtime state of one module for the caller.
func Status(svc modules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "modules service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "module slug is required"))
			return
		}

		status, err := svc.Status(r.Context(), middleware.UserFromContext(r.Context()), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, status)
	}
}
