package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/neomorfeo/sendstack/internal/domain"
)

// Config is the server configuration. Every key can come from the optional
// config file or from the upper-cased environment variable of the same name.
type Config struct {
	Port                 string        `mapstructure:"port"`
	DatabasePath         string        `mapstructure:"database_path"`
	LogLevel             string        `mapstructure:"log_level"`
	LogFormat            string        `mapstructure:"log_format"` // "json" or "text"
	StripeSecretKey      string        `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret  string        `mapstructure:"stripe_webhook_secret"`
	StripePriceID        string        `mapstructure:"stripe_price_id"`
	CheckoutSuccessURL   string        `mapstructure:"checkout_success_url"`
	CheckoutCancelURL    string        `mapstructure:"checkout_cancel_url"`
	AdminJWTSecret       string        `mapstructure:"admin_jwt_secret"`
	RedisURL             string        `mapstructure:"redis_url"`    // selects the redis payload store when set
	DNSResolver          string        `mapstructure:"dns_resolver"` // "doh" or "system"
	DNSDoHURL            string        `mapstructure:"dns_doh_url"`
	PayloadTTL           time.Duration `mapstructure:"payload_ttl"`
	PayloadPurgeInterval time.Duration `mapstructure:"payload_purge_interval"`
}

var defaults = map[string]any{
	"port":                   "8080",
	"database_path":          "sendstack.db",
	"log_level":              "info",
	"log_format":             "json",
	"stripe_secret_key":      "",
	"stripe_webhook_secret":  "",
	"stripe_price_id":        "",
	"checkout_success_url":   "http://localhost:8080/success?session_id={CHECKOUT_SESSION_ID}",
	"checkout_cancel_url":    "http://localhost:8080/intake",
	"admin_jwt_secret":       "",
	"redis_url":              "",
	"dns_resolver":           "doh",
	"dns_doh_url":            "https://dns.google/resolve",
	"payload_ttl":            domain.PayloadTTL,
	"payload_purge_interval": 15 * time.Minute,
}

// Load reads defaults, then the file named by CONFIG_FILE if any, then the
// environment.
func Load() (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with. Missing gateway
// secrets are allowed so the intake pages can run without payments.
func (c Config) Validate() error {
	var errs []error
	switch c.DNSResolver {
	case "doh", "system":
	default:
		errs = append(errs, fmt.Errorf("dns_resolver must be doh or system, got %q", c.DNSResolver))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}
	if c.PayloadTTL <= 0 {
		errs = append(errs, errors.New("payload_ttl must be positive"))
	}
	if c.PayloadPurgeInterval <= 0 {
		errs = append(errs, errors.New("payload_purge_interval must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	return errors.Join(errs...)
}
