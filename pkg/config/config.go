package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Shop         ShopConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Paystack     PaystackConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"SEWSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SEWSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SEWSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SEWSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ShopConfig identifies the single shop this deployment serves.
type ShopConfig struct {
	Slug     string `envconfig:"SEWSHOP_SHOP_SLUG" required:"true"`
	Name     string `envconfig:"SEWSHOP_SHOP_NAME" default:"SewShop"`
	Currency string `envconfig:"SEWSHOP_SHOP_CURRENCY" default:"NGN"`
}

type DBConfig struct {
	DSN    string `envconfig:"SEWSHOP_DB_DSN"`
	Driver string `envconfig:"SEWSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SEWSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SEWSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SEWSHOP_DB_USER"`
	LegacyPassword string `envconfig:"SEWSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SEWSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SEWSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SEWSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SEWSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SEWSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SEWSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SEWSHOP_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SEWSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SEWSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SEWSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SEWSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SEWSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PricingConfig drives the flat-rate tax and shipping calculators.
type PricingConfig struct {
	TaxRatePercent        string `envconfig:"SEWSHOP_TAX_RATE_PERCENT" default:"7.5"`
	FlatShippingFee       string `envconfig:"SEWSHOP_FLAT_SHIPPING_FEE" default:"1500"`
	FreeShippingThreshold string `envconfig:"SEWSHOP_FREE_SHIPPING_THRESHOLD" default:"0"`
}

type PaystackConfig struct {
	SecretKey   string        `envconfig:"SEWSHOP_PAYSTACK_SECRET_KEY"`
	PublicKey   string        `envconfig:"SEWSHOP_PAYSTACK_PUBLIC_KEY"`
	BaseURL     string        `envconfig:"SEWSHOP_PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	CallbackURL string        `envconfig:"SEWSHOP_PAYSTACK_CALLBACK_URL"`
	Timeout     time.Duration `envconfig:"SEWSHOP_PAYSTACK_TIMEOUT" default:"15s"`
}

// Enabled reports whether the inline payment gateway is configured.
func (p PaystackConfig) Enabled() bool {
	return strings.TrimSpace(p.SecretKey) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SEWSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SEWSHOP_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SEWSHOP_CORS_ALLOWED_ORIGINS" default:"*"`
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
