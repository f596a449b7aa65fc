package auth

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/modulehq/platform-backend/internal/billing"
	"github.com/modulehq/platform-backend/internal/tenants"
	"github.com/modulehq/platform-backend/internal/users"
	pkgAuth "github.com/modulehq/platform-backend/pkg/auth"
	"github.com/modulehq/platform-backend/pkg/auth/session"
	"github.com/modulehq/platform-backend/pkg/config"
	"github.com/modulehq/platform-backend/pkg/db"
	"github.com/modulehq/platform-backend/pkg/db/models"
	"github.com/modulehq/platform-backend/pkg/enums"
	pkgerrors "github.com/modulehq/platform-backend/pkg/errors"
	"github.com/modulehq/platform-backend/pkg/security"
)

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerTenantRepository interface {
	Create(ctx context.Context, dto tenants.CreateTenantDTO) (*models.Tenant, error)
}

type registerUserRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

type registerBillingRepository interface {
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
// Repo factories default to the real GORM repos bound to the transaction.
type RegisterServiceParams struct {
	TxRunner           txRunner
	SessionManager     sessionManager
	TenantRepoFactory  func(tx *gorm.DB) registerTenantRepository
	UserRepoFactory    func(tx *gorm.DB) registerUserRepository
	BillingRepoFactory func(tx *gorm.DB) registerBillingRepository
	PasswordConfig     config.PasswordConfig
	SuperAdminEmail    string
	JWTConfig          config.JWTConfig
}

type registerService struct {
	tx              txRunner
	session         sessionManager
	tenantRepos     func(tx *gorm.DB) registerTenantRepository
	userRepos       func(tx *gorm.DB) registerUserRepository
	billingRepos    func(tx *gorm.DB) registerBillingRepository
	passwordCfg     config.PasswordConfig
	superAdminEmail string
	jwtCfg          config.JWTConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	tenantRepos := params.TenantRepoFactory
	if tenantRepos == nil {
		tenantRepos = func(tx *gorm.DB) registerTenantRepository { return tenants.NewRepository(tx) }
	}
	userRepos := params.UserRepoFactory
	if userRepos == nil {
		userRepos = func(tx *gorm.DB) registerUserRepository { return users.NewRepository(tx) }
	}
	billingRepos := params.BillingRepoFactory
	if billingRepos == nil {
		billingRepos = func(tx *gorm.DB) registerBillingRepository { return billing.NewRepository(tx) }
	}
	return &registerService{
		tx:              params.TxRunner,
		session:         params.SessionManager,
		tenantRepos:     tenantRepos,
		userRepos:       userRepos,
		billingRepos:    billingRepos,
		passwordCfg:     params.PasswordConfig,
		superAdminEmail: strings.ToLower(strings.TrimSpace(params.SuperAdminEmail)),
		jwtCfg:          params.JWTConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.TenantName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant_name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	role := enums.UserRoleAdmin
	if s.superAdminEmail != "" && email == s.superAdminEmail {
		role = enums.UserRoleSuperAdmin
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		tenant, err := s.tenantRepos(tx).Create(ctx, tenants.CreateTenantDTO{
			Name:   strings.TrimSpace(req.TenantName),
			Domain: req.Domain,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tenant")
		}

		user, err = s.userRepos(tx).Create(ctx, users.CreateUserDTO{
			TenantID:     tenant.ID,
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         role,
		})
		if err != nil {
			// The unique email index is the only writer-side guard against
			// concurrent duplicate registrations.
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if role == enums.UserRoleSuperAdmin {
			return nil
		}

		freePlan, _ := billing.PlanByID(enums.PlanFree)
		sub := &models.Subscription{
			TenantID:   tenant.ID,
			Plan:       freePlan.ID,
			Modules:    freePlan.ModuleFlags(),
			AllModules: freePlan.AllModules,
			Status:     enums.SubscriptionStatusActive,
			IsCurrent:  true,
			StartedAt:  time.Now().UTC(),
		}
		if err := s.billingRepos(tx).CreateSubscription(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create free subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}
