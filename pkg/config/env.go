package config

// EnvPrefix is the envconfig prefix shared by every setting.
const EnvPrefix = "PLATFORM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "PLATFORM_APP_ENV"
	EnvPort                   = "PLATFORM_APP_PORT"
	EnvDBDSN                  = "PLATFORM_DB_DSN"
	EnvDBHost                 = "PLATFORM_DB_HOST"
	EnvDBUser                 = "PLATFORM_DB_USER"
	EnvDBName                 = "PLATFORM_DB_NAME"
	EnvRedisURL               = "PLATFORM_REDIS_URL"
	EnvJWTSecret              = "PLATFORM_JWT_SECRET"
	EnvJWTIssuer              = "PLATFORM_JWT_ISSUER"
	EnvJWTExpMins             = "PLATFORM_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PLATFORM_REFRESH_TOKEN_TTL_MINUTES"
	EnvSuperAdminEmail        = "PLATFORM_SUPER_ADMIN_EMAIL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
