package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the sign-in service.
type Config struct {
	ListenPort       string `env:"LISTEN_PORT" envDefault:":3000"`
	PublicURL        string `env:"PUBLIC_URL"`
	FrontendEndpoint string `env:"FRONTEND_ENDPOINT"`
	CallbackPath     string `env:"CALLBACK_PATH" envDefault:"/auth/callback"`

	// Path of the Google client secrets document, or gs://bucket/object.
	ClientSecretsPath string   `env:"CLIENT_SECRETS_PATH" envDefault:"production/google/client_secrets.json"`
	GoogleScopes      []string `env:"GOOGLE_SCOPES" envSeparator:"," envDefault:"email,profile"`
	PeopleAPIEndpoint string   `env:"PEOPLE_API_ENDPOINT"`

	SessionStore  string        `env:"SESSION_STORE" envDefault:"memory"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"true"`

	NotifyProvider string `env:"NOTIFY_PROVIDER" envDefault:"none"`
	NotifyFrom     string `env:"NOTIFY_FROM"`
	AWSRegion      string `env:"AWS_REGION"`
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.GoogleScopes = trimCSV(cfg.GoogleScopes)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ClientSecretsPath == "" {
		return fmt.Errorf("CLIENT_SECRETS_PATH is required")
	}

	if !strings.HasPrefix(c.CallbackPath, "/") {
		return fmt.Errorf("CALLBACK_PATH must start with '/'")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	switch c.SessionStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SESSION_STORE is postgres")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}

	switch c.NotifyProvider {
	case "none":
	case "ses":
		if c.NotifyFrom == "" || c.AWSRegion == "" {
			return fmt.Errorf("NOTIFY_FROM and AWS_REGION are required when NOTIFY_PROVIDER is ses")
		}
	case "smtp":
		if c.NotifyFrom == "" || c.SMTPHost == "" {
			return fmt.Errorf("NOTIFY_FROM and SMTP_HOST are required when NOTIFY_PROVIDER is smtp")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_PROVIDER %q", c.NotifyProvider)
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
