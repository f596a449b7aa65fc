package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/internal/auth"
	"github.com/modulehq/platform-backend/internal/billing"
	"github.com/modulehq/platform-backend/internal/entitlements"
	"github.com/modulehq/platform-backend/internal/modules"
	"github.com/modulehq/platform-backend/internal/tenants"
	"github.com/modulehq/platform-backend/internal/users"
	pkgauth "github.com/modulehq/platform-backend/pkg/auth"
	"github.com/modulehq/platform-backend/pkg/config"
	"github.com/modulehq/platform-backend/pkg/db/models"
	dbtypes "github.com/modulehq/platform-backend/pkg/db/types"
	"github.com/modulehq/platform-backend/pkg/enums"
	"github.com/modulehq/platform-backend/pkg/logger"
	"github.com/modulehq/platform-backend/pkg/metrics"
	"github.com/modulehq/platform-backend/pkg/pagination"
)

// stubDirectory backs both the auth user loader and the entitlement policy.
type stubDirectory struct {
	users map[uuid.UUID]*models.User
	subs  map[uuid.UUID]*models.Subscription
}

func (d *stubDirectory) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *stubDirectory) FindCurrentByTenant(_ context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	if s, ok := d.subs[tenantID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Logout(context.Context, string) error {
	return nil
}

func (stubAuthService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

type stubBillingService struct{}

func (stubBillingService) Plans() []billing.PlanDTO {
	return []billing.PlanDTO{}
}

func (stubBillingService) Upgrade(context.Context, *models.User, enums.PlanID) (*billing.UpgradeResponse, error) {
	return &billing.UpgradeResponse{}, nil
}

func (stubBillingService) ActivateSubscription(context.Context, string) error {
	return nil
}

func (stubBillingService) ListPayments(context.Context, *models.User, pagination.Params) (*billing.PaymentPage, error) {
	return &billing.PaymentPage{Payments: []billing.PaymentDTO{}}, nil
}

type stubTenantListRepo struct{}

func (stubTenantListRepo) List(context.Context) ([]models.Tenant, error) {
	return nil, nil
}

func (stubTenantListRepo) FindByID(context.Context, uuid.UUID) (*models.Tenant, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubTenantUserCounter struct{}

func (stubTenantUserCounter) CountByTenant(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "platform-test",
			ExpirationMinutes: 15,
		},
	}
}

type routerFixture struct {
	router    http.Handler
	directory *stubDirectory
	cfg       *config.Config
}

func newTestRouter(t *testing.T) *routerFixture {
	t.Helper()

	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	directory := &stubDirectory{
		users: map[uuid.UUID]*models.User{},
		subs:  map[uuid.UUID]*models.Subscription{},
	}

	policy, err := entitlements.NewPolicy(entitlements.PolicyParams{SubscriptionRepo: directory})
	if err != nil {
		t.Fatalf("failed to build policy: %v", err)
	}
	modulesService, err := modules.NewService(modules.ServiceParams{Policy: policy})
	if err != nil {
		t.Fatalf("failed to build modules service: %v", err)
	}
	tenantsService, err := tenants.NewService(tenants.ServiceParams{
		TenantRepo:       stubTenantListRepo{},
		UserRepo:         stubTenantUserCounter{},
		SubscriptionRepo: directory,
	})
	if err != nil {
		t.Fatalf("failed to build tenants service: %v", err)
	}

	router := NewRouter(RouterParams{
		Config:          cfg,
		Logger:          logg,
		Sessions:        stubSessionChecker{},
		Users:           directory,
		Metrics:         metrics.NewHTTPMetrics(prometheus.NewRegistry()),
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		BillingService:  stubBillingService{},
		ModulesService:  modulesService,
		TenantsService:  tenantsService,
		Policy:          policy,
	})

	return &routerFixture{router: router, directory: directory, cfg: cfg}
}

func (f *routerFixture) addUser(t *testing.T, role enums.UserRole, withSubscription bool) (*models.User, string) {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    uuid.NewString() + "@router.test",
		Role:     role,
		IsActive: true,
	}
	f.directory.users[user.ID] = user

	if withSubscription {
		f.directory.subs[user.TenantID] = &models.Subscription{
			ID:        uuid.New(),
			TenantID:  user.TenantID,
			Plan:      enums.PlanFree,
			Modules:   dbtypes.ModuleFlags{"avito_parser": true},
			Status:    enums.SubscriptionStatusActive,
			IsCurrent: true,
			StartedAt: time.Now().UTC(),
		}
	}

	token, err := pkgauth.MintAccessToken(f.cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return user, token
}

func TestHealthLive(t *testing.T) {
	fixture := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	fixture := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
	resp := httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestModulesListWithToken(t *testing.T) {
	fixture := newTestRouter(t)
	_, token := fixture.addUser(t, enums.UserRoleAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/api/modules", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data struct {
			Modules []modules.ModuleView `json:"modules"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Data.Modules) == 0 {
		t.Fatalf("expected module catalog in response")
	}
}

func TestModuleStatusRequiresSubscription(t *testing.T) {
	fixture := newTestRouter(t)
	_, token := fixture.addUser(t, enums.UserRoleAdmin, false)

	req := httptest.NewRequest(http.MethodGet, "/api/modules/avito_parser/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 without subscription got %d", resp.Code)
	}

	_, subscribed := fixture.addUser(t, enums.UserRoleAdmin, true)
	req = httptest.NewRequest(http.MethodGet, "/api/modules/avito_parser/status", nil)
	req.Header.Set("Authorization", "Bearer "+subscribed)
	resp = httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with subscription got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestTenantsRequireSuperAdmin(t *testing.T) {
	fixture := newTestRouter(t)
	_, adminToken := fixture.addUser(t, enums.UserRoleAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp := httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant admin got %d", resp.Code)
	}

	_, superToken := fixture.addUser(t, enums.UserRoleSuperAdmin, false)
	req = httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
	req.Header.Set("Authorization", "Bearer "+superToken)
	resp = httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for super admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestBillingSubscriptionReturnsCurrentPlan(t *testing.T) {
	fixture := newTestRouter(t)
	_, token := fixture.addUser(t, enums.UserRoleAdmin, true)

	req := httptest.NewRequest(http.MethodGet, "/api/billing/subscription", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	fixture.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data struct {
			Subscription billing.SubscriptionDTO `json:"subscription"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Data.Subscription.Plan != enums.PlanFree {
		t.Fatalf("unexpected plan %s", body.Data.Subscription.Plan)
	}
}
