package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvDBDSN        = "STOREFRONT_DB_DSN"
	EnvDBHost       = "STOREFRONT_DB_HOST"
	EnvDBPort       = "STOREFRONT_DB_PORT"
	EnvDBUser       = "STOREFRONT_DB_USER"
	EnvDBPassword   = "STOREFRONT_DB_PASSWORD"
	EnvDBName       = "STOREFRONT_DB_NAME"
	EnvDBSSLMode    = "STOREFRONT_DB_SSLMODE"
	EnvRedisURL     = "STOREFRONT_REDIS_URL"
	EnvJWTSecret    = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer    = "STOREFRONT_JWT_ISSUER"
	EnvUseSQLite    = "STOREFRONT_USE_SQLITE"
	EnvCartIdemTTL  = "STOREFRONT_CART_IDEMPOTENCY_TTL"
	EnvCartMaxQty   = "STOREFRONT_CART_MAX_LINE_QUANTITY"
	EnvMetricsPath  = "STOREFRONT_METRICS_PATH"
	EnvAutoMigrate  = "STOREFRONT_AUTO_MIGRATE"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"
	EnvCORSOrigins  = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)

// legacyDBEnvVars lists the discrete variables required when no DSN is set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
