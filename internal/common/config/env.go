package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Notifier modes
const (
	NotifierModeDirect   = "direct"
	NotifierModeQueue    = "queue"
	NotifierModeDisabled = "disabled"
)

// Config represents the application configuration
// This struct contains all configuration parameters for the application
type Config struct {
	// Environment and region info
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	Region      string `env:"REGION" envDefault:"jp"`
	AWSRegion   string `env:"AWS_REGION"`

	// Cognito user pool and app clients
	UserPoolID         string `env:"COGNITO_USER_POOL_ID"`
	ClientID           string `env:"COGNITO_CLIENT_ID"` // legacy single client
	ClientIDWeb        string `env:"COGNITO_CLIENT_ID_WEB"`
	ClientIDMobile     string `env:"COGNITO_CLIENT_ID_MOBILE"`
	ClientSecretWeb    string `env:"COGNITO_CLIENT_SECRET_WEB"`
	ClientSecretMobile string `env:"COGNITO_CLIENT_SECRET_MOBILE"`

	// Secrets Manager secret whose JSON overrides the client secrets above
	ClientSecretsSecretID string `env:"COGNITO_CLIENT_SECRETS_SECRET_ID"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	// User service notifier
	UserServiceURL   string        `env:"USER_SERVICE_URL"`
	NotifierMode     string        `env:"NOTIFIER_MODE" envDefault:"direct"`
	NotifierTimeout  time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"5s"`
	RedisURL         string        `env:"REDIS_URL"`
	NotifierQueueMax int64         `env:"NOTIFIER_QUEUE_MAX" envDefault:"1000"`

	// DynamoDB audit table; empty disables auditing
	AuditTableName string        `env:"AUTH_AUDIT_TABLE_NAME"`
	AuditRetention time.Duration `env:"AUTH_AUDIT_RETENTION" envDefault:"2160h"`

	OTelEndpoint  string `env:"OTEL_ENDPOINT"`
	OTelEnabled   bool   `env:"OTEL_ENABLED" envDefault:"true"`
	DevServerAddr string `env:"DEVSERVER_ADDR" envDefault:":8080"`

	// Lambda detection flag (cached)
	isLambda bool
}

// LoadFromEnv loads the configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Required environment variables
	if cfg.UserPoolID == "" {
		return nil, errors.New("COGNITO_USER_POOL_ID environment variable is required")
	}

	// AWS Region
	if cfg.AWSRegion == "" {
		// Default AWS regions based on our region code
		switch cfg.Region {
		case "us":
			cfg.AWSRegion = "us-west-2"
		case "eu":
			cfg.AWSRegion = "eu-west-1"
		case "jp":
			cfg.AWSRegion = "ap-northeast-1"
		default:
			cfg.AWSRegion = "ap-northeast-1" // Default fallback
		}
	}

	if cfg.Environment == "" {
		cfg.Environment = "dev"
	}
	if cfg.NotifierMode == "" {
		cfg.NotifierMode = NotifierModeDirect
	}

	switch cfg.NotifierMode {
	case NotifierModeDirect, NotifierModeDisabled:
	case NotifierModeQueue:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL environment variable is required when NOTIFIER_MODE=queue")
		}
	default:
		return nil, fmt.Errorf("unknown NOTIFIER_MODE %q", cfg.NotifierMode)
	}

	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 10 * time.Second
	}
	if cfg.NotifierTimeout <= 0 {
		cfg.NotifierTimeout = 5 * time.Second
	}

	// Check if running in Lambda
	cfg.isLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsLambda returns true if the application is running in AWS Lambda
func (c *Config) IsLambda() bool {
	return c.isLambda
}

// NotifierEnabled reports whether post-success notifications should be sent.
// In queue mode the gateway only needs Redis; the worker calls the user service.
func (c *Config) NotifierEnabled() bool {
	switch c.NotifierMode {
	case NotifierModeDisabled:
		return false
	case NotifierModeQueue:
		return c.RedisURL != ""
	default:
		return c.UserServiceURL != ""
	}
}

// ClientSecrets is the JSON document stored under ClientSecretsSecretID
type ClientSecrets struct {
	Web    string `json:"clientSecretWeb"`
	Mobile string `json:"clientSecretMobile"`
}

// ApplyClientSecrets overrides the configured client secrets with non-empty values
func (c *Config) ApplyClientSecrets(s ClientSecrets) {
	if s.Web != "" {
		c.ClientSecretWeb = s.Web
	}
	if s.Mobile != "" {
		c.ClientSecretMobile = s.Mobile
	}
}
