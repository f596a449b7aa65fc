package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	SuperAdmin    SuperAdminConfig
	Payment       PaymentConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PLATFORM_APP_ENV" required:"true"`
	Port         string `envconfig:"PLATFORM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PLATFORM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PLATFORM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PLATFORM_DB_DSN"`
	Driver string `envconfig:"PLATFORM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PLATFORM_DB_HOST"`
	LegacyPort     int    `envconfig:"PLATFORM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PLATFORM_DB_USER"`
	LegacyPassword string `envconfig:"PLATFORM_DB_PASSWORD"`
	LegacyName     string `envconfig:"PLATFORM_DB_NAME"`
	LegacySSLMode  string `envconfig:"PLATFORM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PLATFORM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PLATFORM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PLATFORM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PLATFORM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PLATFORM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PLATFORM_REDIS_ADDR"`
	Password     string        `envconfig:"PLATFORM_REDIS_PASSWORD"`
	DB           int           `envconfig:"PLATFORM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PLATFORM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PLATFORM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PLATFORM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PLATFORM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PLATFORM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PLATFORM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PLATFORM_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PLATFORM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PLATFORM_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PLATFORM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PLATFORM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PLATFORM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PLATFORM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PLATFORM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PLATFORM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PLATFORM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PLATFORM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PLATFORM_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PLATFORM_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PLATFORM_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// SuperAdminConfig marks the email that registers with the super_admin role.
type SuperAdminConfig struct {
	Email string `envconfig:"PLATFORM_SUPER_ADMIN_EMAIL" default:"admin@platform.local"`
}

// PaymentConfig carries the provider credentials. The provider stays offline
// until a completion webhook exists, but the credentials are part of the
// deployment surface already.
type PaymentConfig struct {
	Provider  string `envconfig:"PLATFORM_PAYMENT_PROVIDER" default:"yookassa"`
	ShopID    string `envconfig:"PLATFORM_PAYMENT_SHOP_ID"`
	SecretKey string `envconfig:"PLATFORM_PAYMENT_SECRET_KEY"`
	Currency  string `envconfig:"PLATFORM_PAYMENT_CURRENCY" default:"RUB"`
}

type CORSConfig struct {
	Origins []string `envconfig:"PLATFORM_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PLATFORM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
