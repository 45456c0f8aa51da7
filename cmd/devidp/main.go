package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwks_testutil"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
)

// Dev-only identity provider: one RS256 key, a JWKS document, and Google- and Apple-shaped
// ID tokens on demand. It is NOT an OIDC provider. Point the dev backend at it with
// GOOGLE_ID_TOKEN_JWKS_URL / APPLE_ID_TOKEN_JWKS_URL and matching issuers and audiences.
func main() {
	log := logger.New(getenv("LOG_LEVEL", "info"), getenv("APP_ENV", "development"))
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "5556")
	base := strings.TrimRight(getenv("ISSUER_BASE", "http://devidp:"+port), "/")
	providers := map[string]provider{
		"google": {Issuer: base + "/google", Audience: getenv("GOOGLE_AUDIENCE", "kickoff-dev-google")},
		"apple":  {Issuer: base + "/apple", Audience: getenv("APPLE_AUDIENCE", "app.kickoff.dev")},
	}

	key, err := jwks_testutil.GenerateRSAKeypair(getenv("KID", "dev-kid-1"))
	if err != nil {
		log.Fatal("generate key", zap.Error(err))
	}
	p, err := newIDP(key, providers, getenvDuration("TTL", 30*time.Minute), log)
	if err != nil {
		log.Fatal("build idp", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           p.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("devidp listening",
		zap.String("addr", srv.Addr),
		zap.String("google_issuer", providers["google"].Issuer),
		zap.String("apple_issuer", providers["apple"].Issuer),
	)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("listen", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
