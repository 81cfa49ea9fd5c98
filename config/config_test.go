package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv(ConfigPathEnvVar, "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Payments.Provider != "none" || cfg.Payments.Currency != "usd" {
		t.Errorf("payments = %+v", cfg.Payments)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.TicketSecret() != "test-secret" {
		t.Errorf("ticket secret should fall back to the jwt secret")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("REMINDERS_TIMEZONE", "UTC")
	t.Setenv("TICKET_SECRET", "ticket")
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Logging.Format != "console" {
		t.Errorf("server/logging = %+v %+v", cfg.Server, cfg.Logging)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.TicketSecret() != "ticket" {
		t.Errorf("ticket secret = %q", cfg.TicketSecret())
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("location = %v, %v", loc, err)
	}
}

func TestLoadFromFile(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 7070\nreminders:\n  enabled: false\n  concurrency: 8\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Reminders.Enabled || cfg.Reminders.Concurrency != 8 {
		t.Errorf("cfg = %+v %+v", cfg.Server, cfg.Reminders)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"stripe without key", map[string]string{"PAYMENT_PROVIDER": "stripe"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "sqlite"}},
		{"postgres without host", map[string]string{"DB_DRIVER": "postgres"}},
		{"mongo without uri", map[string]string{"DB_DRIVER": "mongo"}},
		{"bad timezone", map[string]string{"REMINDERS_TIMEZONE": "Mars/Olympus"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnvTransformDropsUnknown(t *testing.T) {
	if got := envTransformFunc("HOME"); got != "" {
		t.Errorf("HOME mapped to %q", got)
	}
	if got := envTransformFunc("SMTP_HOST"); got != "mail.host" {
		t.Errorf("SMTP_HOST mapped to %q", got)
	}
}
