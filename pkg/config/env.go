package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "CATALOG"

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "CATALOG_APP_ENV"
	EnvPort        = "CATALOG_APP_PORT"
	EnvLogLevel    = "CATALOG_LOG_LEVEL"
	EnvServiceKind = "CATALOG_SERVICE_KIND"

	EnvDBDSN    = "CATALOG_DB_DSN"
	EnvDBDriver = "CATALOG_DB_DRIVER"
	EnvDBHost   = "CATALOG_DB_HOST"
	EnvDBPort   = "CATALOG_DB_PORT"
	EnvDBUser   = "CATALOG_DB_USER"
	EnvDBPass   = "CATALOG_DB_PASSWORD"
	EnvDBName   = "CATALOG_DB_NAME"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvJWTSecret  = "CATALOG_JWT_SECRET"
	EnvJWTIssuer  = "CATALOG_JWT_ISSUER"
	EnvJWTExpMins = "CATALOG_JWT_EXPIRATION_MINUTES"

	EnvCacheListTTL   = "CATALOG_CACHE_LIST_TTL"
	EnvCacheDetailTTL = "CATALOG_CACHE_DETAIL_TTL"
	EnvCacheWarmTop   = "CATALOG_CACHE_WARM_TOP"

	EnvCronInterval = "CATALOG_CRON_INTERVAL"

	EnvUseSQLite   = "CATALOG_USE_SQLITE"
	EnvCORSOrigins = "CATALOG_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
