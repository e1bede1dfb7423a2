package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App     AppConfig
	Redis   RedisConfig
	Order   OrderConfig
	Catalog CatalogConfig
	Orders  OrdersConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Order.ensureTaxRate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DISHPATCH_APP_ENV" required:"true"`
	Port         string `envconfig:"DISHPATCH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISHPATCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISHPATCH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"DISHPATCH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DISHPATCH_REDIS_ADDR"`
	Password     string        `envconfig:"DISHPATCH_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISHPATCH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISHPATCH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISHPATCH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISHPATCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISHPATCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISHPATCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OrderConfig carries the pricing constants applied at checkout.
type OrderConfig struct {
	TaxRate string `envconfig:"DISHPATCH_ORDER_TAX_RATE" default:"0.08"`

	rate decimal.Decimal
}

// Rate returns the parsed tax rate.
func (o OrderConfig) Rate() decimal.Decimal {
	return o.rate
}

func (o *OrderConfig) ensureTaxRate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(o.TaxRate))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvOrderTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be in [0, 1), got %s", EnvOrderTaxRate, rate)
	}
	o.rate = rate
	return nil
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"DISHPATCH_CATALOG_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"DISHPATCH_CATALOG_TIMEOUT" default:"10s"`
}

type OrdersConfig struct {
	BaseURL string        `envconfig:"DISHPATCH_ORDERS_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"DISHPATCH_ORDERS_TIMEOUT" default:"30s"`
}
