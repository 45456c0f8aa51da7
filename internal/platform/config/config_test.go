package config

import (
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KICKOFF_API_BASE_URL", "https://api.example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("HTTPTimeout=%v", cfg.HTTPTimeout)
	}
	if cfg.SearchDebounce != 300*time.Millisecond || cfg.SearchPageSize != 15 {
		t.Fatalf("search defaults=%v/%d", cfg.SearchDebounce, cfg.SearchPageSize)
	}
	if cfg.Platform != identity.PlatformIOS || cfg.SessionBackend != SessionMemory || cfg.DiagnosticsSink != SinkLog {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KICKOFF_API_BASE_URL", "http://localhost:8080")
	t.Setenv("KICKOFF_HTTP_TIMEOUT", "3s")
	t.Setenv("KICKOFF_SEARCH_PAGE_SIZE", "20")
	t.Setenv("KICKOFF_PLATFORM", "Android")
	t.Setenv("GOOGLE_ANDROID_CLIENT_ID", "android-client")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.HTTPTimeout != 3*time.Second || cfg.SearchPageSize != 20 || cfg.RedisDB != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Platform != identity.PlatformAndroid || cfg.Google.ClientIDs.Android != "android-client" {
		t.Fatalf("platform/google not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing base url", env: map[string]string{}},
		{name: "relative base url", env: map[string]string{"KICKOFF_API_BASE_URL": "/api"}},
		{name: "bad duration", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "KICKOFF_HTTP_TIMEOUT": "soon"}},
		{name: "bad page size", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "KICKOFF_SEARCH_PAGE_SIZE": "0"}},
		{name: "bad platform", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "KICKOFF_PLATFORM": "desktop"}},
		{name: "bolt without path", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "SESSION_BACKEND": "bolt"}},
		{name: "postgres without dsn", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "SESSION_BACKEND": "postgres"}},
		{name: "unknown backend", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "SESSION_BACKEND": "sqlite"}},
		{name: "amqp without url", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "DIAGNOSTICS_SINK": "amqp"}},
		{name: "nats without url", env: map[string]string{"KICKOFF_API_BASE_URL": "http://x", "DIAGNOSTICS_SINK": "nats"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KICKOFF_API_BASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadIDTokenConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_ID_TOKEN_AUDIENCE", "web-client, ios-client")
	t.Setenv("ID_TOKEN_CLOCK_SKEW", "5s")

	cfg, err := LoadIDTokenConfigFromEnv("GOOGLE_ID_TOKEN", GoogleIssuer, GoogleJWKSURL)
	if err != nil {
		t.Fatalf("LoadIDTokenConfigFromEnv() err=%v", err)
	}
	if cfg.Issuer != GoogleIssuer || cfg.JWKSURL != GoogleJWKSURL {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Audience) != 2 || cfg.Audience[1] != "ios-client" {
		t.Fatalf("audience=%v", cfg.Audience)
	}
	if cfg.ClockSkew != 5*time.Second {
		t.Fatalf("ClockSkew=%v", cfg.ClockSkew)
	}

	t.Setenv("GOOGLE_ID_TOKEN_AUDIENCE", "")
	if _, err := LoadIDTokenConfigFromEnv("GOOGLE_ID_TOKEN", GoogleIssuer, GoogleJWKSURL); err == nil {
		t.Fatalf("expected error for missing audience")
	}
}

func TestLoadDevBackendConfig(t *testing.T) {
	t.Setenv("AUTH_MODE", "dev")
	t.Setenv("SESSION_SIGNING_KEY", "short")
	if _, err := LoadDevBackendConfig(); err == nil {
		t.Fatalf("expected error for short signing key")
	}

	t.Setenv("SESSION_SIGNING_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("APPLE_CONFLICT_EMAILS", "taken@example.test")
	cfg, err := LoadDevBackendConfig()
	if err != nil {
		t.Fatalf("LoadDevBackendConfig() err=%v", err)
	}
	if cfg.AuthMode != AuthModeDev || cfg.SessionTTL != 24*time.Hour || len(cfg.AppleConflictEmails) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.StorageBackend != "memory" || cfg.CancelCutoff != 2*time.Hour || cfg.IdempotencyRetention != 24*time.Hour {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}

	t.Setenv("STORAGE_BACKEND", "postgres")
	if _, err := LoadDevBackendConfig(); err == nil {
		t.Fatalf("expected error for postgres without DATABASE_URL")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/kickoff")
	if cfg, err = LoadDevBackendConfig(); err != nil || cfg.DatabaseURL == "" {
		t.Fatalf("postgres config: cfg=%+v err=%v", cfg, err)
	}

	t.Setenv("STORAGE_BACKEND", "sqlite")
	if _, err := LoadDevBackendConfig(); err == nil {
		t.Fatalf("expected error for unknown storage backend")
	}
	t.Setenv("STORAGE_BACKEND", "memory")

	t.Setenv("DEV_USER", "dev-user")
	if cfg, err = LoadDevBackendConfig(); err != nil || cfg.DevUser != "dev-user" {
		t.Fatalf("dev user: cfg=%+v err=%v", cfg, err)
	}
	t.Setenv("AUTH_MODE", "verify")
	if _, err := LoadDevBackendConfig(); err == nil {
		t.Fatalf("expected error for DEV_USER outside dev auth mode")
	}
}
