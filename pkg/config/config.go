package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "STOREFRONT_APP_ENV"
	EnvPort                   = "STOREFRONT_APP_PORT"
	EnvLogLevel               = "STOREFRONT_LOG_LEVEL"
	EnvCartCurrency           = "STOREFRONT_CART_CURRENCY"
	EnvCartShippingFee        = "STOREFRONT_CART_SHIPPING_FEE"
	EnvCheckoutSubmitDelay    = "STOREFRONT_CHECKOUT_SUBMIT_DELAY"
	EnvCheckoutAttemptTimeout = "STOREFRONT_CHECKOUT_ATTEMPT_TIMEOUT"
	EnvCheckoutMaxAttempts    = "STOREFRONT_CHECKOUT_MAX_ATTEMPTS"
	EnvRedisURL               = "STOREFRONT_REDIS_URL"
)

type Config struct {
	App      AppConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Seller   SellerConfig
	Session  SessionConfig
	Redis    RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
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
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig carries pricing knobs applied to every cart summary.
type CartConfig struct {
	Currency    string          `envconfig:"STOREFRONT_CART_CURRENCY" default:"NGN"`
	ShippingFee decimal.Decimal `envconfig:"STOREFRONT_CART_SHIPPING_FEE" default:"10.00"`
}

// CurrencyUnit parses the configured ISO 4217 code.
func (c CartConfig) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(c.Currency)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}
	return unit, nil
}

func (c CartConfig) validate() error {
	if _, err := c.CurrencyUnit(); err != nil {
		return err
	}
	if c.ShippingFee.IsNegative() {
		return fmt.Errorf("%s must be non-negative", EnvCartShippingFee)
	}
	return nil
}

// CheckoutConfig controls order submission timing and retry policy.
type CheckoutConfig struct {
	SubmitDelay    time.Duration `envconfig:"STOREFRONT_CHECKOUT_SUBMIT_DELAY" default:"1500ms"`
	AttemptTimeout time.Duration `envconfig:"STOREFRONT_CHECKOUT_ATTEMPT_TIMEOUT" default:"5s"`
	MaxAttempts    int           `envconfig:"STOREFRONT_CHECKOUT_MAX_ATTEMPTS" default:"3"`
	BackoffBase    time.Duration `envconfig:"STOREFRONT_CHECKOUT_BACKOFF_BASE" default:"200ms"`
	OrderIDPrefix  string        `envconfig:"STOREFRONT_CHECKOUT_ORDER_ID_PREFIX" default:"ORD"`
}

func (c CheckoutConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%s must be at least 1", EnvCheckoutMaxAttempts)
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutAttemptTimeout)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("%s must be non-negative", EnvCheckoutSubmitDelay)
	}
	return nil
}

// SellerConfig tunes onboarding. The per-IP limit only applies when Redis is
// configured.
type SellerConfig struct {
	RegistrationDelay time.Duration `envconfig:"STOREFRONT_SELLER_REGISTRATION_DELAY" default:"1s"`
	RateLimitWindow   time.Duration `envconfig:"STOREFRONT_SELLER_RATE_LIMIT_WINDOW" default:"1h"`
	RateLimitPerIP    int           `envconfig:"STOREFRONT_SELLER_RATE_LIMIT_PER_IP" default:"5"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_INTERVAL" default:"1m"`
}

// RedisConfig is optional; an empty URL and address disables idempotent
// order placement.
type RedisConfig struct {
	URL            string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address        string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password       string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB             int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"STOREFRONT_REDIS_IDEMPOTENCY_TTL" default:"168h"`
	KeyPrefix      string        `envconfig:"STOREFRONT_REDIS_KEY_PREFIX" default:"sf"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}
