package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"storefront/internal/domain"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Order    OrderConfig    `mapstructure:"order"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwtSecret"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
}

type PricingConfig struct {
	ShippingFee           string `mapstructure:"shippingFee"`
	FreeShippingThreshold string `mapstructure:"freeShippingThreshold"`
	DiscountThreshold     string `mapstructure:"discountThreshold"`
	DiscountRate          string `mapstructure:"discountRate"`
}

type OrderConfig struct {
	CheckoutTxTimeout time.Duration `mapstructure:"checkoutTxTimeout"`
	MaxRetryAttempts  int           `mapstructure:"maxRetryAttempts"`
}

// EnvPrefix prefixes every environment override, e.g. STOREFRONT_DATABASE_HOST.
const EnvPrefix = "STOREFRONT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "storefront")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", "24h")
	v.SetDefault("pricing.shippingFee", "30000")
	v.SetDefault("pricing.freeShippingThreshold", "500000")
	v.SetDefault("pricing.discountThreshold", "1000000")
	v.SetDefault("pricing.discountRate", "0.05")
	v.SetDefault("order.checkoutTxTimeout", "5s")
	v.SetDefault("order.maxRetryAttempts", 3)
}

// Load reads the JSON config file at path (optional when empty) and applies
// environment overrides on top of it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret must be set")
	}
	if c.Order.MaxRetryAttempts < 1 {
		return errors.New("order.maxRetryAttempts must be at least 1")
	}
	if c.Order.CheckoutTxTimeout <= 0 {
		return errors.New("order.checkoutTxTimeout must be greater than 0")
	}
	if _, err := c.Pricing.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy parses the pricing section into exact decimals.
func (p PricingConfig) Policy() (domain.PricingPolicy, error) {
	shippingFee, err := parseAmount("pricing.shippingFee", p.ShippingFee)
	if err != nil {
		return domain.PricingPolicy{}, err
	}
	freeShipping, err := parseAmount("pricing.freeShippingThreshold", p.FreeShippingThreshold)
	if err != nil {
		return domain.PricingPolicy{}, err
	}
	discountThreshold, err := parseAmount("pricing.discountThreshold", p.DiscountThreshold)
	if err != nil {
		return domain.PricingPolicy{}, err
	}
	discountRate, err := parseAmount("pricing.discountRate", p.DiscountRate)
	if err != nil {
		return domain.PricingPolicy{}, err
	}
	if discountRate.GreaterThan(decimal.NewFromInt(1)) {
		return domain.PricingPolicy{}, errors.New("pricing.discountRate must be between 0 and 1")
	}

	return domain.PricingPolicy{
		ShippingFee:           shippingFee,
		FreeShippingThreshold: freeShipping,
		DiscountThreshold:     discountThreshold,
		DiscountRate:          discountRate,
	}, nil
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s: %w", name, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", name)
	}
	return d, nil
}
