package config

import (
	"fmt"
	"strings"
	"time"
)

// Auth modes of the dev backend.
const (
	// AuthModeVerify checks provider ID tokens against the provider JWKS.
	AuthModeVerify = "verify"
	// AuthModeDev reads the sub claim of provider ID tokens without checking signatures.
	AuthModeDev = "dev"
)

// DevBackendConfig configures cmd/devbackend.
type DevBackendConfig struct {
	Port     string
	AppEnv   string
	LogLevel string
	AuthMode string

	// SessionSigningKey signs HS256 session tokens.
	SessionSigningKey string
	SessionTTL        time.Duration
	SessionIssuer     string

	Google IDTokenConfig
	Apple  IDTokenConfig

	// AppleConflictEmails are addresses already linked to another provider; an Apple
	// login presenting one of them is rejected with 409.
	AppleConflictEmails []string

	// StorageBackend is memory or postgres.
	StorageBackend string
	DatabaseURL    string
	// IdempotencyRetention bounds how long cancel responses are replayable (memory only).
	IdempotencyRetention time.Duration
	// CancelCutoff is how long before kickoff a reservation stops being cancellable.
	CancelCutoff time.Duration

	// DevUser, in dev auth mode, replaces bearer sessions with X-Debug-User (falling back to
	// this user) on the authenticated routes.
	DevUser string
}

func LoadDevBackendConfig() (DevBackendConfig, error) {
	if err := loadDotEnv(); err != nil {
		return DevBackendConfig{}, err
	}
	cfg := DevBackendConfig{
		Port:                getEnv("PORT", "8080"),
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AuthMode:            strings.ToLower(getEnv("AUTH_MODE", AuthModeVerify)),
		SessionSigningKey:   getEnv("SESSION_SIGNING_KEY", ""),
		SessionIssuer:       getEnv("SESSION_ISSUER", "kickoff-devbackend"),
		AppleConflictEmails: splitList(getEnv("APPLE_CONFLICT_EMAILS", "")),
		StorageBackend:      strings.ToLower(getEnv("STORAGE_BACKEND", "memory")),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DevUser:             getEnv("DEV_USER", ""),
	}
	var err error
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return DevBackendConfig{}, err
	}

	if cfg.IdempotencyRetention, err = getEnvDuration("IDEMPOTENCY_RETENTION", 24*time.Hour); err != nil {
		return DevBackendConfig{}, err
	}
	if cfg.CancelCutoff, err = getEnvDuration("CANCEL_CUTOFF", 2*time.Hour); err != nil {
		return DevBackendConfig{}, err
	}
	switch cfg.StorageBackend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return DevBackendConfig{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return DevBackendConfig{}, fmt.Errorf("STORAGE_BACKEND must be one of memory, postgres")
	}
	switch cfg.AuthMode {
	case AuthModeDev:
	case AuthModeVerify:
		if cfg.DevUser != "" {
			return DevBackendConfig{}, fmt.Errorf("DEV_USER is only allowed with AUTH_MODE=dev")
		}
		if cfg.Google, err = LoadIDTokenConfigFromEnv("GOOGLE_ID_TOKEN", GoogleIssuer, GoogleJWKSURL); err != nil {
			return DevBackendConfig{}, err
		}
		if cfg.Apple, err = LoadIDTokenConfigFromEnv("APPLE_ID_TOKEN", AppleIssuer, AppleJWKSURL); err != nil {
			return DevBackendConfig{}, err
		}
	default:
		return DevBackendConfig{}, fmt.Errorf("AUTH_MODE must be one of verify, dev")
	}

	if len(cfg.SessionSigningKey) < 32 {
		return DevBackendConfig{}, fmt.Errorf("SESSION_SIGNING_KEY must be at least 32 characters")
	}
	if cfg.SessionTTL <= 0 {
		return DevBackendConfig{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	return cfg, nil
}
