package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// setRequiredEnv sets the minimum environment for a valid config.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CMS_BASE_URL", "https://cms.example")
	t.Setenv("CMS_API_KEY", "cms-key-123456")
	t.Setenv("JWT_SECRET", "jwt-secret-123456")
	t.Setenv("OAUTH_BASE_URL", "https://idp.example")
	t.Setenv("OAUTH_CLIENT_ID", "client-id")
	t.Setenv("OAUTH_CLIENT_SECRET", "client-secret-123")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example/auth/callback")

	// Neutralize ambient values so defaults are observable.
	for _, key := range []string{"TURNPAGE_PORT", "PORT", "TURNPAGE_ENV", "ENV", "GO_ENV", "REDIS_ADDR", "AI_MODEL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, errs := Load("")
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Env != DefaultEnv {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.RedisAddr != DefaultRedisAddr {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.AIModel != DefaultAIModel {
		t.Errorf("AIModel = %q", cfg.AIModel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9999\nenv: staging\nredis_addr: file-redis:6379\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TURNPAGE_PORT", "7070")

	cfg, errs := Load(path)
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %d, env must win over file", cfg.Port)
	}
	if cfg.Env != "staging" {
		t.Errorf("Env = %q, file value should apply when env is unset", cfg.Env)
	}
	if cfg.RedisAddr != "file-redis:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "not-a-port")

	_, errs := Load("")
	found := false
	for _, err := range errs {
		if errors.Is(err, ErrInvalidPort) {
			found = true
		}
	}
	if !found {
		t.Errorf("errs = %v, want ErrInvalidPort", errs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	setRequiredEnv(t)
	if _, errs := Load("/nonexistent/config.yaml"); len(errs) == 0 {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoad_CORSOriginsList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, errs := Load("")
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestValidate_Required(t *testing.T) {
	cfg := &Config{}
	errs := cfg.Validate()

	want := []error{
		ErrMissingCMSBaseURL, ErrMissingCMSAPIKey, ErrMissingJWTSecret,
		ErrMissingOAuthBaseURL, ErrMissingOAuthClientID,
		ErrMissingOAuthSecret, ErrMissingOAuthRedirect,
	}
	for _, wantErr := range want {
		found := false
		for _, err := range errs {
			if errors.Is(err, wantErr) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing %v", wantErr)
		}
	}
}

func TestValidate_StripeAllOrNothing(t *testing.T) {
	base := Config{
		CMSBaseURL: "x", CMSAPIKey: "x", JWTSecret: "x",
		OAuthBaseURL: "x", OAuthClientID: "x", OAuthClientSecret: "x", OAuthRedirectURL: "x",
	}

	// No Stripe config at all is fine.
	if errs := base.Validate(); len(errs) != 0 {
		t.Errorf("no stripe: errs = %v", errs)
	}

	// Partial Stripe config is not.
	partial := base
	partial.StripeAPIKey = "sk_test_123"
	errs := partial.Validate()
	if len(errs) != 2 {
		t.Errorf("partial stripe: errs = %v", errs)
	}
}

func TestLogSummary_MasksSecrets(t *testing.T) {
	cfg := &Config{
		JWTSecret:    "super-secret-value",
		StripeAPIKey: "sk_live_abcdef123456",
	}
	summary := cfg.LogSummary()

	if got := summary["jwt_secret"]; got != "supe****" {
		t.Errorf("jwt_secret = %q", got)
	}
	if got := summary["stripe_api_key"]; got != "sk_live_****" {
		t.Errorf("stripe_api_key = %q", got)
	}
	if got := summary["cms_api_key"]; got != "<not set>" {
		t.Errorf("cms_api_key = %q", got)
	}
}
