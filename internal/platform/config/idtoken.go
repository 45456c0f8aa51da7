package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// IDTokenConfig configures verification of one identity provider's ID tokens against its JWKS.
type IDTokenConfig struct {
	Issuer string
	// Audience is the OAuth client ID the token must be issued for. Any of the
	// comma-separated values is accepted.
	Audience []string
	JWKSURL  string

	ClockSkew              time.Duration
	JWKSRefreshInterval    time.Duration
	JWKSMinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}

// Known provider defaults.
const (
	GoogleIssuer  = "https://accounts.google.com"
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	AppleIssuer   = "https://appleid.apple.com"
	AppleJWKSURL  = "https://appleid.apple.com/auth/keys"
)

// LoadIDTokenConfigFromEnv reads <PREFIX>_ISSUER, <PREFIX>_AUDIENCE and <PREFIX>_JWKS_URL
// (prefix GOOGLE_ID_TOKEN or APPLE_ID_TOKEN, say), falling back to the given issuer and JWKS
// defaults. The audience is required.
func LoadIDTokenConfigFromEnv(prefix, defaultIssuer, defaultJWKSURL string) (IDTokenConfig, error) {
	audience := splitList(os.Getenv(prefix + "_AUDIENCE"))
	if len(audience) == 0 {
		return IDTokenConfig{}, fmt.Errorf("missing required env var: %s_AUDIENCE", prefix)
	}

	cfg := IDTokenConfig{
		Issuer:    getEnv(prefix+"_ISSUER", defaultIssuer),
		Audience:  audience,
		JWKSURL:   getEnv(prefix+"_JWKS_URL", defaultJWKSURL),
		ClockSkew: 30 * time.Second,
		// Refresh periodically to pick up key rotation even if an old key is still cached.
		JWKSRefreshInterval: 5 * time.Minute,
		// Bound refresh frequency when a token presents an unknown kid.
		JWKSMinRefreshInterval: 10 * time.Second,
		HTTPTimeout:            5 * time.Second,
	}
	if cfg.Issuer == "" || cfg.JWKSURL == "" {
		return IDTokenConfig{}, fmt.Errorf("missing required env vars: %s_ISSUER, %s_JWKS_URL", prefix, prefix)
	}

	var err error
	if cfg.ClockSkew, err = getEnvDuration("ID_TOKEN_CLOCK_SKEW", cfg.ClockSkew); err != nil {
		return IDTokenConfig{}, err
	}
	if cfg.JWKSRefreshInterval, err = getEnvDuration("ID_TOKEN_JWKS_REFRESH_INTERVAL", cfg.JWKSRefreshInterval); err != nil {
		return IDTokenConfig{}, err
	}
	if cfg.JWKSMinRefreshInterval, err = getEnvDuration("ID_TOKEN_JWKS_MIN_REFRESH_INTERVAL", cfg.JWKSMinRefreshInterval); err != nil {
		return IDTokenConfig{}, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
