package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalYAML = `
app:
  name: Liga de Golf
  port: 8080
database:
  driver: sqlite
  filename: build/db/test.db
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.App.Environment != "development" {
		t.Fatalf("expected development environment, got %q", cfg.App.Environment)
	}
	if cfg.Auth.SessionHours != defaultSessionHours {
		t.Fatalf("expected session hours %d, got %d", defaultSessionHours, cfg.Auth.SessionHours)
	}
	if cfg.Auth.PhoneRegion != "ES" {
		t.Fatalf("expected ES phone region, got %q", cfg.Auth.PhoneRegion)
	}
	if cfg.Payments.Currency != "eur" {
		t.Fatalf("expected eur currency, got %q", cfg.Payments.Currency)
	}
	if cfg.Payments.SuccessPath != "/dashboard?payment=success" {
		t.Fatalf("unexpected success path %q", cfg.Payments.SuccessPath)
	}
	if cfg.Scheduler.TokenCleanupCron != defaultTokenCleanupCron {
		t.Fatalf("unexpected cleanup cron %q", cfg.Scheduler.TokenCleanupCron)
	}
	if cfg.RateLimit.LoginMaxAttempts != defaultLoginMaxAttempts || cfg.RateLimit.ContactMaxPerHour != defaultContactPerHourLimit {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected IsDevelopment")
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("app: [unterminated")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.App.SecretKey = "app-secret"
	cfg.Auth.AdminSessionSecret = "admin-secret"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing app secret", mutate: func(c *Config) { c.App.SecretKey = "" }, wantErr: "APP_SECRET_KEY"},
		{name: "missing admin secret", mutate: func(c *Config) { c.Auth.AdminSessionSecret = "" }, wantErr: "ADMIN_SESSION_SECRET"},
		{name: "shared secrets", mutate: func(c *Config) { c.Auth.AdminSessionSecret = c.App.SecretKey }, wantErr: "must differ"},
		{name: "unsupported driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: "unsupported database driver"},
		{name: "missing filename", mutate: func(c *Config) { c.Database.Filename = "" }, wantErr: "filename is required"},
		{name: "negative price", mutate: func(c *Config) { c.Payments.PriceCents = -1 }, wantErr: "price_cents"},
		{name: "bad currency", mutate: func(c *Config) { c.Payments.Currency = "euro" }, wantErr: "currency"},
		{name: "bad cron", mutate: func(c *Config) { c.Scheduler.TokenCleanupCron = "every hour" }, wantErr: "token_cleanup_cron"},
		{name: "missing port", mutate: func(c *Config) { c.App.Port = 0 }, wantErr: "port"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadReadsSecretsFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STRIPE_WEBHOOK_SECRET=whsec_from_dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("APP_SECRET_KEY", "env-app-secret")
	t.Setenv("ADMIN_SESSION_SECRET", "env-admin-secret")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")
	os.Unsetenv("STRIPE_WEBHOOK_SECRET")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.SecretKey != "env-app-secret" || cfg.Auth.AdminSessionSecret != "env-admin-secret" {
		t.Fatalf("secrets not loaded from environment")
	}
	if cfg.Payments.WebhookSecret != "whsec_from_dotenv" {
		t.Fatalf("expected webhook secret from .env, got %q", cfg.Payments.WebhookSecret)
	}
	if cfg.SESConfigured() {
		t.Fatalf("SES should not be configured without credentials")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
