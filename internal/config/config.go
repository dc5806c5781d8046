// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Content store (headless CMS)
	CMSBaseURL string `koanf:"cms_base_url"`
	CMSAPIKey  string `koanf:"cms_api_key"`

	// Session tokens
	JWTSecret         string `koanf:"jwt_secret"`
	JWTPreviousSecret string `koanf:"jwt_previous_secret"` // Optional, set during rotation

	// Member identity provider (OAuth)
	OAuthBaseURL      string `koanf:"oauth_base_url"`
	OAuthClientID     string `koanf:"oauth_client_id"`
	OAuthClientSecret string `koanf:"oauth_client_secret"`
	OAuthRedirectURL  string `koanf:"oauth_redirect_url"`

	// Stripe
	StripeAPIKey             string `koanf:"stripe_api_key"`
	StripeCheckoutSuccessURL string `koanf:"stripe_checkout_success_url"`
	StripeCheckoutCancelURL  string `koanf:"stripe_checkout_cancel_url"`

	// Generative text service
	AIBaseURL string `koanf:"ai_base_url"`
	AIAPIKey  string `koanf:"ai_api_key"`
	AIModel   string `koanf:"ai_model"`

	// Redis (carts, rate limiting)
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`

	// CORS allowed origins, comma-separated in env
	CORSOrigins []string `koanf:"cors_origins"`
}

// Configuration validation errors.
var (
	ErrMissingCMSBaseURL     = errors.New("CMS_BASE_URL is required")
	ErrMissingCMSAPIKey      = errors.New("CMS_API_KEY is required")
	ErrMissingJWTSecret      = errors.New("JWT_SECRET is required")
	ErrMissingOAuthBaseURL   = errors.New("OAUTH_BASE_URL is required")
	ErrMissingOAuthClientID  = errors.New("OAUTH_CLIENT_ID is required")
	ErrMissingOAuthSecret    = errors.New("OAUTH_CLIENT_SECRET is required")
	ErrMissingOAuthRedirect  = errors.New("OAUTH_REDIRECT_URL is required")
	ErrMissingStripeAPIKey   = errors.New("STRIPE_API_KEY is required")
	ErrMissingStripeSuccess  = errors.New("STRIPE_CHECKOUT_SUCCESS_URL is required")
	ErrMissingStripeCancel   = errors.New("STRIPE_CHECKOUT_CANCEL_URL is required")
	ErrInvalidPort           = errors.New("PORT must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort      = 8080
	DefaultEnv       = "development"
	DefaultRedisAddr = "localhost:6379"
	DefaultAIModel   = "gpt-4o-mini"
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try TURNPAGE_PORT first, then PORT
	port, portErr := getEnvIntOrDefaultMulti([]string{"TURNPAGE_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cfg := &Config{
		Port:              port,
		Env:               getEnvOrDefaultMulti([]string{"TURNPAGE_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		CMSBaseURL:        getEnvOrKoanf("CMS_BASE_URL", k, "cms_base_url"),
		CMSAPIKey:         getEnvOrKoanf("CMS_API_KEY", k, "cms_api_key"),
		JWTSecret:         getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTPreviousSecret: getEnvOrKoanf("JWT_PREVIOUS_SECRET", k, "jwt_previous_secret"),
		OAuthBaseURL:      getEnvOrKoanf("OAUTH_BASE_URL", k, "oauth_base_url"),
		OAuthClientID:     getEnvOrKoanf("OAUTH_CLIENT_ID", k, "oauth_client_id"),
		OAuthClientSecret: getEnvOrKoanf("OAUTH_CLIENT_SECRET", k, "oauth_client_secret"),
		OAuthRedirectURL:  getEnvOrKoanf("OAUTH_REDIRECT_URL", k, "oauth_redirect_url"),

		StripeAPIKey:             getEnvOrKoanf("STRIPE_API_KEY", k, "stripe_api_key"),
		StripeCheckoutSuccessURL: getEnvOrKoanf("STRIPE_CHECKOUT_SUCCESS_URL", k, "stripe_checkout_success_url"),
		StripeCheckoutCancelURL:  getEnvOrKoanf("STRIPE_CHECKOUT_CANCEL_URL", k, "stripe_checkout_cancel_url"),

		AIBaseURL: getEnvOrKoanf("AI_BASE_URL", k, "ai_base_url"),
		AIAPIKey:  getEnvOrKoanf("AI_API_KEY", k, "ai_api_key"),
		AIModel:   getEnvOrDefault("AI_MODEL", k.String("ai_model"), DefaultAIModel),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", k.String("redis_addr"), DefaultRedisAddr),
		RedisPassword: getEnvOrKoanf("REDIS_PASSWORD", k, "redis_password"),

		CORSOrigins: getEnvListOrKoanf("CORS_ORIGINS", k, "cors_origins"),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvListOrKoanf reads a comma-separated environment variable as a list,
// falling back to a koanf string slice.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.CMSBaseURL == "" {
		errs = append(errs, ErrMissingCMSBaseURL)
	}
	if c.CMSAPIKey == "" {
		errs = append(errs, ErrMissingCMSAPIKey)
	}
	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.OAuthBaseURL == "" {
		errs = append(errs, ErrMissingOAuthBaseURL)
	}
	if c.OAuthClientID == "" {
		errs = append(errs, ErrMissingOAuthClientID)
	}
	if c.OAuthClientSecret == "" {
		errs = append(errs, ErrMissingOAuthSecret)
	}
	if c.OAuthRedirectURL == "" {
		errs = append(errs, ErrMissingOAuthRedirect)
	}

	// Stripe configuration is optional. Only validate fields if any Stripe value is set.
	if c.StripeAPIKey != "" || c.StripeCheckoutSuccessURL != "" || c.StripeCheckoutCancelURL != "" {
		if c.StripeAPIKey == "" {
			errs = append(errs, ErrMissingStripeAPIKey)
		}
		if c.StripeCheckoutSuccessURL == "" {
			errs = append(errs, ErrMissingStripeSuccess)
		}
		if c.StripeCheckoutCancelURL == "" {
			errs = append(errs, ErrMissingStripeCancel)
		}
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                fmt.Sprintf("%d", c.Port),
		"env":                 c.Env,
		"cms_base_url":        c.CMSBaseURL,
		"cms_api_key":         maskSecret(c.CMSAPIKey),
		"jwt_secret":          maskSecret(c.JWTSecret),
		"jwt_previous_secret": maskSecret(c.JWTPreviousSecret),
		"oauth_base_url":      c.OAuthBaseURL,
		"oauth_client_id":     c.OAuthClientID,
		"oauth_client_secret": maskSecret(c.OAuthClientSecret),
		"oauth_redirect_url":  c.OAuthRedirectURL,
		"stripe_api_key":      maskStripeKey(c.StripeAPIKey),
		"ai_base_url":         c.AIBaseURL,
		"ai_api_key":          maskSecret(c.AIAPIKey),
		"ai_model":            c.AIModel,
		"redis_addr":          c.RedisAddr,
		"redis_password":      maskSecret(c.RedisPassword),
		"cors_origins":        strings.Join(c.CORSOrigins, ","),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskStripeKey masks a Stripe API key, preserving the prefix (sk_live_, sk_test_, etc.)
func maskStripeKey(s string) string {
	if s == "" {
		return "<not set>"
	}

	parts := strings.SplitN(s, "_", 3)
	if len(parts) == 3 {
		return parts[0] + "_" + parts[1] + "_****"
	}

	return maskSecret(s)
}
