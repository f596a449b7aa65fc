package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modulehq/platform-backend/api/controllers"
	authcontrollers "github.com/modulehq/platform-backend/api/controllers/auth"
	billingcontrollers "github.com/modulehq/platform-backend/api/controllers/billing"
	modulecontrollers "github.com/modulehq/platform-backend/api/controllers/modules"
	tenantcontrollers "github.com/modulehq/platform-backend/api/controllers/tenants"
	"github.com/modulehq/platform-backend/api/middleware"
	"github.com/modulehq/platform-backend/internal/auth"
	"github.com/modulehq/platform-backend/internal/billing"
	"github.com/modulehq/platform-backend/internal/entitlements"
	"github.com/modulehq/platform-backend/internal/modules"
	"github.com/modulehq/platform-backend/internal/tenants"
	"github.com/modulehq/platform-backend/pkg/auth/session"
	"github.com/modulehq/platform-backend/pkg/config"
	"github.com/modulehq/platform-backend/pkg/db"
	"github.com/modulehq/platform-backend/pkg/logger"
	"github.com/modulehq/platform-backend/pkg/metrics"
	"github.com/modulehq/platform-backend/pkg/redis"
)

type rateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Users    middleware.UserLoader
	Metrics  *metrics.HTTPMetrics

	AuthService     auth.Service
	RegisterService auth.RegisterService
	BillingService  billing.Service
	ModulesService  modules.Service
	TenantsService  tenants.Service
	Policy          *entitlements.Policy
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(p.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var dbPinger db.Pinger
	if p.DB != nil {
		dbPinger = p.DB
	}
	var redisPinger redis.Pinger
	var limiter rateLimitStore
	if p.Redis != nil {
		redisPinger = p.Redis
		limiter = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPinger, redisPinger, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).
			Post("/register", authcontrollers.Register(p.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).
			Post("/login", authcontrollers.Login(p.AuthService, logg))
		r.Post("/refresh", authcontrollers.Refresh(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, p.Users, logg))
			r.Post("/logout", authcontrollers.Logout(p.AuthService, logg))
			r.Get("/me", authcontrollers.Me(p.AuthService, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, p.Users, logg))

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plans", billingcontrollers.Plans(p.BillingService, logg))
			r.Get("/subscription", billingcontrollers.CurrentSubscription(p.Policy, logg))
			r.Post("/upgrade", billingcontrollers.Upgrade(p.BillingService, logg))
			r.Get("/payments", billingcontrollers.Payments(p.BillingService, logg))
		})

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", modulecontrollers.List(p.ModulesService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSubscription(p.Policy, logg))
				r.Get("/{slug}/status", modulecontrollers.Status(p.ModulesService, logg))
			})
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin(logg))
			r.Get("/", tenantcontrollers.List(p.TenantsService, logg))
			r.Get("/{id}", tenantcontrollers.Get(p.TenantsService, logg))
		})
	})

	return r
}
