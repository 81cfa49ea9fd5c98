package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names an optional YAML file layered between the built-in
// defaults and the environment.
const ConfigPathEnvVar = "CONFIG_PATH"

const defaultConfigPath = "config.yaml"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Mail      MailConfig      `koanf:"mail"`
	Payments  PaymentsConfig  `koanf:"payments"`
	Zoom      ZoomConfig      `koanf:"zoom"`
	Reminders RemindersConfig `koanf:"reminders"`
	Ticket    TicketConfig    `koanf:"ticket"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	UploadDir       string        `koanf:"upload_dir" validate:"required"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"oneof=postgres mongo memory"`
	Host     string `koanf:"host" validate:"required_if=Driver postgres"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode  string `koanf:"sslmode"`
	MongoURI string `koanf:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDB  string `koanf:"mongo_db" validate:"required_if=Driver mongo"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type MailConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	User     string        `koanf:"user"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from" validate:"omitempty,email"`
	FromName string        `koanf:"from_name"`
	UseTLS   bool          `koanf:"use_tls"`
	Timeout  time.Duration `koanf:"timeout"`
}

type PaymentsConfig struct {
	Provider        string        `koanf:"provider" validate:"oneof=stripe xendit none"`
	StripeSecretKey string        `koanf:"stripe_secret_key" validate:"required_if=Provider stripe"`
	XenditSecretKey string        `koanf:"xendit_secret_key" validate:"required_if=Provider xendit"`
	Currency        string        `koanf:"currency" validate:"required"`
	SuccessURL      string        `koanf:"success_url" validate:"omitempty,url"`
	CancelURL       string        `koanf:"cancel_url" validate:"omitempty,url"`
	Timeout         time.Duration `koanf:"timeout"`
}

type ZoomConfig struct {
	BaseURL   string        `koanf:"base_url" validate:"url"`
	APIKey    string        `koanf:"api_key"`
	APISecret string        `koanf:"api_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	Timeout   time.Duration `koanf:"timeout"`
}

type RemindersConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Timezone    string `koanf:"timezone"`
	Concurrency int    `koanf:"concurrency" validate:"min=1"`
}

type TicketConfig struct {
	// Secret signs ticket payloads; the JWT secret is used when empty.
	Secret string `koanf:"secret"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			UploadDir:       "./uploads/",
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Port:    5432,
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Mail: MailConfig{
			Port:     587,
			FromName: "EventHub",
			UseTLS:   true,
			Timeout:  30 * time.Second,
		},
		Payments: PaymentsConfig{
			Provider:   "none",
			Currency:   "usd",
			SuccessURL: "http://localhost:3000/payment/success",
			CancelURL:  "http://localhost:3000/payment/cancel",
			Timeout:    15 * time.Second,
		},
		Zoom: ZoomConfig{
			BaseURL:  "https://api.zoom.us/v2",
			TokenTTL: time.Minute,
			Timeout:  15 * time.Second,
		},
		Reminders: RemindersConfig{
			Enabled:     true,
			Timezone:    "Local",
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load layers built-in defaults, an optional YAML file and the environment,
// in increasing priority, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("reminders.timezone: %w", err)
	}
	return nil
}

// Location resolves the reminder scheduler's timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Reminders.Timezone)
}

func (c *Config) TicketSecret() string {
	if c.Ticket.Secret != "" {
		return c.Ticket.Secret
	}
	return c.Auth.JWTSecret
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

var envMappings = map[string]string{
	"port":                "server.port",
	"shutdown_timeout":    "server.shutdown_timeout",
	"upload_dir":          "server.upload_dir",
	"db_driver":           "database.driver",
	"db_host":             "database.host",
	"db_port":             "database.port",
	"db_user":             "database.user",
	"db_password":         "database.password",
	"db_name":             "database.name",
	"db_sslmode":          "database.sslmode",
	"mongo_uri":           "database.mongo_uri",
	"mongo_db":            "database.mongo_db",
	"jwt_secret":          "auth.jwt_secret",
	"jwt_ttl":             "auth.token_ttl",
	"smtp_host":           "mail.host",
	"smtp_port":           "mail.port",
	"smtp_user":           "mail.user",
	"smtp_password":       "mail.password",
	"smtp_from":           "mail.from",
	"smtp_from_name":      "mail.from_name",
	"smtp_use_tls":        "mail.use_tls",
	"mail_timeout":        "mail.timeout",
	"payment_provider":    "payments.provider",
	"stripe_secret_key":   "payments.stripe_secret_key",
	"xendit_secret_key":   "payments.xendit_secret_key",
	"payment_currency":    "payments.currency",
	"payment_success_url": "payments.success_url",
	"payment_cancel_url":  "payments.cancel_url",
	"payment_timeout":     "payments.timeout",
	"zoom_base_url":       "zoom.base_url",
	"zoom_api_key":        "zoom.api_key",
	"zoom_api_secret":     "zoom.api_secret",
	"zoom_token_ttl":      "zoom.token_ttl",
	"zoom_timeout":        "zoom.timeout",
	"reminders_enabled":   "reminders.enabled",
	"reminders_timezone":  "reminders.timezone",
	"reminders_workers":   "reminders.concurrency",
	"ticket_secret":       "ticket.secret",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
}

// envTransformFunc maps flat environment names onto config paths. Unknown
// variables are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
