// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultSessionHours        = 8
	defaultTokenCleanupCron    = "0 * * * *"
	defaultPriceCurrency       = "eur"
	defaultVerificationHours   = 24
	defaultPhoneRegion         = "ES"
	defaultContactPerHourLimit = 5
	defaultLoginMaxAttempts    = 5
	defaultLoginLockoutMinutes = 15
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuthConfig struct {
	SessionHours       int    `yaml:"session_hours"`
	VerificationHours  int    `yaml:"verification_hours"`
	PhoneRegion        string `yaml:"phone_region"`
	AdminSessionSecret string `yaml:"-"` // Loaded from environment
}

type EmailConfig struct {
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	ContactAddress  string `yaml:"contact_address"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type PaymentsConfig struct {
	PriceID       string `yaml:"price_id"`
	PriceCents    int64  `yaml:"price_cents"`
	Currency      string `yaml:"currency"`
	SuccessPath   string `yaml:"success_path"`
	CancelPath    string `yaml:"cancel_path"`
	SecretKey     string `yaml:"-"` // Loaded from environment
	WebhookSecret string `yaml:"-"` // Loaded from environment
}

type SchedulerConfig struct {
	TokenCleanupCron string `yaml:"token_cleanup_cron"`
}

type RateLimitConfig struct {
	LoginMaxAttempts  int  `yaml:"login_max_attempts"`
	LoginLockoutMins  int  `yaml:"login_lockout_minutes"`
	ContactMaxPerHour int  `yaml:"contact_max_per_hour"`
	TrustProxy        bool `yaml:"trust_proxy"` // Read client IP from X-Forwarded-For
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		StaticDir   string `yaml:"static_dir"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Features struct {
		EnableScheduler bool `yaml:"enable_scheduler"`
		EnableDebug     bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Auth.AdminSessionSecret = os.Getenv("ADMIN_SESSION_SECRET")
	cfg.Email.AccessKeyID = os.Getenv("AWS_SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SES_SECRET_ACCESS_KEY")
	cfg.Payments.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Payments.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills in defaults. Secrets are not read.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "build/bin/static"
	}
	if c.Auth.SessionHours <= 0 {
		c.Auth.SessionHours = defaultSessionHours
	}
	if c.Auth.VerificationHours <= 0 {
		c.Auth.VerificationHours = defaultVerificationHours
	}
	if c.Auth.PhoneRegion == "" {
		c.Auth.PhoneRegion = defaultPhoneRegion
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = defaultPriceCurrency
	}
	if c.Payments.SuccessPath == "" {
		c.Payments.SuccessPath = "/dashboard?payment=success"
	}
	if c.Payments.CancelPath == "" {
		c.Payments.CancelPath = "/dashboard?payment=cancelled"
	}
	if c.Scheduler.TokenCleanupCron == "" {
		c.Scheduler.TokenCleanupCron = defaultTokenCleanupCron
	}
	if c.RateLimit.LoginMaxAttempts <= 0 {
		c.RateLimit.LoginMaxAttempts = defaultLoginMaxAttempts
	}
	if c.RateLimit.LoginLockoutMins <= 0 {
		c.RateLimit.LoginLockoutMins = defaultLoginLockoutMinutes
	}
	if c.RateLimit.ContactMaxPerHour <= 0 {
		c.RateLimit.ContactMaxPerHour = defaultContactPerHourLimit
	}
}

func (c *Config) IsDevelopment() bool {
	return c == nil || c.App.Environment == "development"
}

// SESConfigured reports whether outbound email can go through SES.
func (c *Config) SESConfigured() bool {
	return c.Email.AccessKeyID != "" && c.Email.SecretAccessKey != "" && c.Email.Region != "" && c.Email.Sender != ""
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.SecretKey == "" {
		return fmt.Errorf("APP_SECRET_KEY is required")
	}
	if c.Auth.AdminSessionSecret == "" {
		return fmt.Errorf("ADMIN_SESSION_SECRET is required")
	}
	if c.Auth.AdminSessionSecret == c.App.SecretKey {
		return fmt.Errorf("ADMIN_SESSION_SECRET must differ from APP_SECRET_KEY")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Payments.PriceCents < 0 {
		return fmt.Errorf("payments price_cents must be 0 or greater")
	}
	if len(strings.TrimSpace(c.Payments.Currency)) != 3 {
		return fmt.Errorf("payments currency must be a 3-letter ISO code")
	}

	if _, err := cron.ParseStandard(c.Scheduler.TokenCleanupCron); err != nil {
		return fmt.Errorf("invalid scheduler token_cleanup_cron %q: %w", c.Scheduler.TokenCleanupCron, err)
	}

	return nil
}
