package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis
	RedisURL string `env:"REDIS_URL,required"`

	// JWT Configuration
	JWTHS256Secret      string `env:"JWT_HS256_SECRET,required"` // Base64-encoded HMAC secret
	JWTIssuer           string `env:"JWT_ISSUER" envDefault:"leadflow-web"`
	JWTAudience         string `env:"JWT_AUDIENCE,required"`
	JWTClockSkewSeconds int    `env:"JWT_CLOCK_SKEW_SECONDS" envDefault:"60"`

	// Webhook ingestion tokens, CSV of token:source pairs
	// (e.g., "tok_abc:landing-page,tok_def:typeform")
	WebhookTokens string `env:"WEBHOOK_TOKENS"`

	// OpenAI (lead scoring)
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// OpenTelemetry
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"leadflow-api"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`

	// Server
	Port   string `env:"PORT" envDefault:"3003"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	// Rate Limiting
	RateLimitPerWorkspacePerMin int `env:"RATE_LIMIT_PER_WORKSPACE_PER_MIN" envDefault:"100"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWTHS256Secret == "" {
		return fmt.Errorf("JWT_HS256_SECRET is required")
	}

	if c.JWTAudience == "" {
		return fmt.Errorf("JWT_AUDIENCE is required")
	}

	if c.JWTClockSkewSeconds < 0 {
		return fmt.Errorf("JWT_CLOCK_SKEW_SECONDS must be non-negative")
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	if c.RateLimitPerWorkspacePerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_WORKSPACE_PER_MIN must be positive")
	}

	if _, err := c.GetWebhookTokens(); err != nil {
		return err
	}

	return nil
}

// GetWebhookTokens parses WEBHOOK_TOKENS into a token→source map
func (c *Config) GetWebhookTokens() (map[string]string, error) {
	tokens := make(map[string]string)
	if c.WebhookTokens == "" {
		return tokens, nil
	}

	for _, pair := range strings.Split(c.WebhookTokens, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, source, ok := strings.Cut(pair, ":")
		token = strings.TrimSpace(token)
		source = strings.TrimSpace(source)
		if !ok || token == "" || source == "" {
			return nil, fmt.Errorf("WEBHOOK_TOKENS entry %q must be token:source", pair)
		}
		if _, dup := tokens[token]; dup {
			return nil, fmt.Errorf("WEBHOOK_TOKENS contains duplicate token")
		}
		tokens[token] = source
	}
	return tokens, nil
}

// AIScoringEnabled reports whether the OpenAI integration is configured
func (c *Config) AIScoringEnabled() bool {
	return c.OpenAIAPIKey != ""
}
