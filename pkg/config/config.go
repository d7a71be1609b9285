package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Session      SessionConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.App.IsProd() && cfg.DB.DriverName() != DBDriverPostgres {
		return nil, fmt.Errorf("%s must be %s in %s", EnvDBDriver, DBDriverPostgres, AppEnvProd)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOREFRONT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"STOREFRONT_REDIS_KEY_PREFIX" default:"sf"`
}

// Configured reports whether any redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig describes how bearer tokens from the identity provider are verified.
type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

// SessionConfig controls the anonymous shopping session cookie and its state store.
type SessionConfig struct {
	CookieName   string        `envconfig:"STOREFRONT_SESSION_COOKIE_NAME" default:"storefront_sid"`
	TTL          time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"24h"`
	Backend      string        `envconfig:"STOREFRONT_SESSION_BACKEND" default:"redis"`
	SecureCookie bool          `envconfig:"STOREFRONT_SESSION_SECURE_COOKIE" default:"true"`
}

// UsesRedis reports whether session state lives in redis.
func (s SessionConfig) UsesRedis() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Backend), "memory")
}

// CheckoutConfig holds the pricing constants used when building payment sessions.
type CheckoutConfig struct {
	SettlementCurrency string          `envconfig:"STOREFRONT_CHECKOUT_CURRENCY" default:"dkk"`
	ExchangeRate       decimal.Decimal `envconfig:"STOREFRONT_CHECKOUT_EXCHANGE_RATE" default:"7.5"`
	StandardShipping   decimal.Decimal `envconfig:"STOREFRONT_CHECKOUT_STANDARD_SHIPPING" default:"20.0"`
	PublicBaseURL      string          `envconfig:"STOREFRONT_CHECKOUT_PUBLIC_BASE_URL"`
	SessionTTL         time.Duration   `envconfig:"STOREFRONT_CHECKOUT_SESSION_TTL" default:"45m"`
}

func (c CheckoutConfig) validate() error {
	if strings.TrimSpace(c.SettlementCurrency) == "" {
		return fmt.Errorf("checkout currency is required")
	}
	if !c.ExchangeRate.IsPositive() {
		return fmt.Errorf("%s must be positive", EnvCheckoutExchangeRate)
	}
	if c.StandardShipping.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvCheckoutStandardShipping)
	}
	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute url", EnvCheckoutPublicBaseURL)
		}
	}
	return nil
}

// RateLimitConfig throttles checkout submissions.
type RateLimitConfig struct {
	CheckoutWindow       time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit      int           `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"30"`
	CheckoutSessionLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_SESSION_LIMIT" default:"10"`
	CheckoutEmailLimit   int           `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_EMAIL_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	PublishableKey string        `envconfig:"STOREFRONT_STRIPE_PUBLISHABLE_KEY" required:"true"`
	SecretKey      string        `envconfig:"STOREFRONT_STRIPE_SECRET_KEY" required:"true"`
	WebhookSecret  string        `envconfig:"STOREFRONT_STRIPE_WEBHOOK_SECRET"`
	Env            string        `envconfig:"STOREFRONT_STRIPE_ENV" default:"test"`
	WebhookTTL     time.Duration `envconfig:"STOREFRONT_STRIPE_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
	// APIURL points the API backend elsewhere, e.g. at stripe-mock.
	APIURL string `envconfig:"STOREFRONT_STRIPE_API_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CronConfig struct {
	Interval time.Duration `envconfig:"STOREFRONT_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"STOREFRONT_CRON_LOCK_TTL" default:"10m"`
}

// DriverName normalises Driver, defaulting to postgres.
func (db DBConfig) DriverName() string {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	if driver == "" {
		return DBDriverPostgres
	}
	return driver
}

func (db *DBConfig) ensureDSN() error {
	switch db.DriverName() {
	case DBDriverPostgres:
	case DBDriverSQLite:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}

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
