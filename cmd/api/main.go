package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/modulehq/platform-backend/api/routes"
	"github.com/modulehq/platform-backend/internal/auth"
	"github.com/modulehq/platform-backend/internal/billing"
	"github.com/modulehq/platform-backend/internal/entitlements"
	"github.com/modulehq/platform-backend/internal/modules"
	"github.com/modulehq/platform-backend/internal/tenants"
	"github.com/modulehq/platform-backend/internal/users"
	"github.com/modulehq/platform-backend/pkg/auth/session"
	"github.com/modulehq/platform-backend/pkg/config"
	"github.com/modulehq/platform-backend/pkg/db"
	"github.com/modulehq/platform-backend/pkg/gateway"
	"github.com/modulehq/platform-backend/pkg/logger"
	"github.com/modulehq/platform-backend/pkg/metrics"
	"github.com/modulehq/platform-backend/pkg/migrate"
	"github.com/modulehq/platform-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing clients", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	paymentGateway, err := gateway.New(context.Background(), cfg.Payment, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	billingRepo := billing.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:        dbClient,
		SessionManager:  sessionManager,
		PasswordConfig:  cfg.Password,
		SuperAdminEmail: cfg.SuperAdmin.Email,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		DB:            dbClient,
		Gateway:       paymentGateway,
		PaymentConfig: cfg.Payment,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	policy, err := entitlements.NewPolicy(entitlements.PolicyParams{
		SubscriptionRepo: billingRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlement policy", err)
		os.Exit(1)
	}

	modulesService, err := modules.NewService(modules.ServiceParams{Policy: policy})
	if err != nil {
		logg.Error(context.Background(), "failed to create modules service", err)
		os.Exit(1)
	}

	tenantsService, err := tenants.NewService(tenants.ServiceParams{
		TenantRepo:       tenants.NewRepository(dbClient.DB()),
		UserRepo:         usersRepo,
		SubscriptionRepo: billingRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tenants service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Sessions:        sessionManager,
			Users:           usersRepo,
			Metrics:         metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			AuthService:     authService,
			RegisterService: registerService,
			BillingService:  billingService,
			ModulesService:  modulesService,
			TenantsService:  tenantsService,
			Policy:          policy,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}
}
