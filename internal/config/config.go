package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/invite-sh/server/internal/model"
)

// Config holds the configuration for the invite service.
// Environment variables are parsed from the INVITE_ prefix,
// e.g. INVITE_HTTP_PORT, INVITE_REDIS_ADDR.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Counter store (rate limiting)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	// Azure OpenAI (extraction)
	AzureOpenAIResourceName string `envconfig:"AZURE_OPENAI_RESOURCE_NAME" default:""`
	AzureOpenAIAPIKey       string `envconfig:"AZURE_OPENAI_API_KEY" default:""`
	AzureOpenAIDeploymentID string `envconfig:"AZURE_OPENAI_DEPLOYMENT_ID" default:""`
	AzureOpenAIAPIVersion   string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-06-01"`
	// AzureOpenAIEndpoint overrides the resource-derived base URL (tests, proxies).
	AzureOpenAIEndpoint string `envconfig:"AZURE_OPENAI_ENDPOINT" default:""`

	// Rate-limit policy: RateLimitMax requests per RateLimitWindow, per client key.
	RateLimitMax      int           `envconfig:"RATE_LIMIT_MAX" default:"5"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	RateLimitFailOpen bool          `envconfig:"RATE_LIMIT_FAIL_OPEN" default:"false"`

	// Extraction call bounds
	ExtractTimeout  time.Duration `envconfig:"EXTRACT_TIMEOUT" default:"30s"`
	MaxOutputTokens int           `envconfig:"MAX_OUTPUT_TOKENS" default:"2048"`

	// CORS origins for the external form, comma separated. "*" allows all.
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// New creates a Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("INVITE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Bool("redis_addr_present", cfg.RedisAddr != "").
		Bool("azure_credentials_present", cfg.AzureOpenAIAPIKey != "").
		Str("azure_deployment", cfg.AzureOpenAIDeploymentID).
		Int("rate_limit_max", cfg.RateLimitMax).
		Dur("rate_limit_window", cfg.RateLimitWindow).
		Bool("rate_limit_fail_open", cfg.RateLimitFailOpen).
		Msg("Configuration loaded")

	return &cfg, nil
}

// Validate reports every missing required variable. The returned error wraps
// model.ErrConfiguration; the full list is for internal logs only and must
// never reach a caller.
func (c *Config) Validate() error {
	var missing []string
	if c.RedisAddr == "" {
		missing = append(missing, "INVITE_REDIS_ADDR")
	}
	if c.AzureOpenAIResourceName == "" && c.AzureOpenAIEndpoint == "" {
		missing = append(missing, "INVITE_AZURE_OPENAI_RESOURCE_NAME")
	}
	if c.AzureOpenAIAPIKey == "" {
		missing = append(missing, "INVITE_AZURE_OPENAI_API_KEY")
	}
	if c.AzureOpenAIDeploymentID == "" {
		missing = append(missing, "INVITE_AZURE_OPENAI_DEPLOYMENT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrConfiguration, strings.Join(missing, ", "))
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: rate-limit policy must be positive (max=%d window=%s)",
			model.ErrConfiguration, c.RateLimitMax, c.RateLimitWindow)
	}
	return nil
}

// AzureBaseURL returns the chat-completions base URL for the configured
// resource, honoring the explicit endpoint override.
func (c *Config) AzureBaseURL() string {
	if c.AzureOpenAIEndpoint != "" {
		return c.AzureOpenAIEndpoint
	}
	return fmt.Sprintf("https://%s.openai.azure.com", c.AzureOpenAIResourceName)
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// NewForTesting creates a config with every required field populated.
func NewForTesting() *Config {
	return &Config{
		HTTPPort:                8080,
		RedisAddr:               "localhost:6379",
		AzureOpenAIResourceName: "test-resource",
		AzureOpenAIAPIKey:       "test-key",
		AzureOpenAIDeploymentID: "test-deployment",
		AzureOpenAIAPIVersion:   "2024-06-01",
		RateLimitMax:            5,
		RateLimitWindow:         60 * time.Second,
		ExtractTimeout:          30 * time.Second,
		MaxOutputTokens:         2048,
		CORSAllowedOrigins:      "*",
	}
}
