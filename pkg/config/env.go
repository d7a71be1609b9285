package config

// EnvPrefix scopes every variable read by envconfig.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "STOREFRONT_APP_ENV"
	EnvPort        = "STOREFRONT_APP_PORT"
	EnvLogLevel    = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat   = "STOREFRONT_LOG_FORMAT"
	EnvServiceKind = "STOREFRONT_SERVICE_KIND"
	EnvCORSOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"

	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBDriver = "STOREFRONT_DB_DRIVER"
	EnvDBHost   = "STOREFRONT_DB_HOST"
	EnvDBUser   = "STOREFRONT_DB_USER"
	EnvDBName   = "STOREFRONT_DB_NAME"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"

	EnvSessionBackend = "STOREFRONT_SESSION_BACKEND"

	EnvStripePublishableKey = "STOREFRONT_STRIPE_PUBLISHABLE_KEY"
	EnvStripeSecretKey      = "STOREFRONT_STRIPE_SECRET_KEY"
	EnvStripeWebhookSecret  = "STOREFRONT_STRIPE_WEBHOOK_SECRET"
	EnvStripeEnv            = "STOREFRONT_STRIPE_ENV"
	EnvStripeAPIURL         = "STOREFRONT_STRIPE_API_URL"

	EnvCheckoutExchangeRate     = "STOREFRONT_CHECKOUT_EXCHANGE_RATE"
	EnvCheckoutStandardShipping = "STOREFRONT_CHECKOUT_STANDARD_SHIPPING"
	EnvCheckoutPublicBaseURL    = "STOREFRONT_CHECKOUT_PUBLIC_BASE_URL"
	EnvCheckoutSessionTTL       = "STOREFRONT_CHECKOUT_SESSION_TTL"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
