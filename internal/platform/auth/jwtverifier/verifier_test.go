package jwtverifier_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwks_testutil"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwtverifier"
	"github.com/kickoff-app/kickoff-core/internal/platform/config"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newHarness(t *testing.T, refresh time.Duration) (*jwtverifier.Verifier, *fakeClock, config.IDTokenConfig, func([]jwks_testutil.Keypair)) {
	t.Helper()

	jwksSrv, setKeys := jwks_testutil.NewRotatingJWKSServer()
	t.Cleanup(jwksSrv.Close)

	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	cfg := config.IDTokenConfig{
		Issuer:                 "https://accounts.google.test",
		Audience:               []string{"web-client", "ios-client"},
		JWKSURL:                jwksSrv.URL,
		ClockSkew:              0,
		JWKSRefreshInterval:    refresh,
		JWKSMinRefreshInterval: 0,
		HTTPTimeout:            2 * time.Second,
	}
	return jwtverifier.NewWithOptions(cfg, nil, clk), clk, cfg, setKeys
}

func TestVerifier_Verify_ValidToken(t *testing.T) {
	t.Parallel()

	v, clk, cfg, setKeys := newHarness(t, 10*time.Minute)
	kp, err := jwks_testutil.GenerateRSAKeypair("kid-1")
	if err != nil {
		t.Fatalf("GenerateRSAKeypair: %v", err)
	}
	setKeys([]jwks_testutil.Keypair{kp})

	token, err := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, "ios-client", "google-123", clk.Now(), 5*time.Minute, nil, map[string]any{
		"email":       "fan@example.test",
		"given_name":  "Ada",
		"family_name": "Lovelace",
	})
	if err != nil {
		t.Fatalf("MintRS256JWT: %v", err)
	}

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "google-123" || claims.Email != "fan@example.test" || claims.GivenName != "Ada" || claims.FamilyName != "Lovelace" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(clk.Now().Add(5 * time.Minute)) {
		t.Fatalf("ExpiresAt=%v", claims.ExpiresAt)
	}
}

func TestVerifier_Verify_Expired(t *testing.T) {
	t.Parallel()

	v, clk, cfg, setKeys := newHarness(t, 10*time.Minute)
	kp, _ := jwks_testutil.GenerateRSAKeypair("kid-1")
	setKeys([]jwks_testutil.Keypair{kp})

	token, _ := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, "web-client", "google-123", clk.Now(), -1*time.Minute, nil, nil)
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVerifier_Verify_NotYetValid(t *testing.T) {
	t.Parallel()

	v, clk, cfg, setKeys := newHarness(t, 10*time.Minute)
	kp, _ := jwks_testutil.GenerateRSAKeypair("kid-1")
	setKeys([]jwks_testutil.Keypair{kp})

	nbf := 2 * time.Minute
	token, _ := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, "web-client", "google-123", clk.Now(), 5*time.Minute, &nbf, nil)
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVerifier_Verify_WrongIssuerOrAudience(t *testing.T) {
	t.Parallel()

	v, clk, cfg, setKeys := newHarness(t, 10*time.Minute)
	kp, _ := jwks_testutil.GenerateRSAKeypair("kid-1")
	setKeys([]jwks_testutil.Keypair{kp})

	wrongIss, _ := jwks_testutil.MintRS256JWT(kp, "wrong-iss", "web-client", "google-123", clk.Now(), 5*time.Minute, nil, nil)
	if _, err := v.Verify(context.Background(), wrongIss); err == nil {
		t.Fatalf("expected error for wrong iss")
	}

	wrongAud, _ := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, "android-client", "google-123", clk.Now(), 5*time.Minute, nil, nil)
	if _, err := v.Verify(context.Background(), wrongAud); err == nil {
		t.Fatalf("expected error for wrong aud")
	}

	multiAud, _ := jwks_testutil.MintRS256JWT(kp, cfg.Issuer, []string{"other", "web-client"}, "google-123", clk.Now(), 5*time.Minute, nil, nil)
	if _, err := v.Verify(context.Background(), multiAud); err != nil {
		t.Fatalf("expected aud array containing a configured client to verify: %v", err)
	}
}

func TestVerifier_Verify_BadSignature(t *testing.T) {
	t.Parallel()

	v, clk, cfg, setKeys := newHarness(t, 10*time.Minute)
	kp, _ := jwks_testutil.GenerateRSAKeypair("kid-1")
	setKeys([]jwks_testutil.Keypair{kp})

	// Mint a JWT with a different private key than what's in JWKS.
	other, _ := rsa.GenerateKey(rand.Reader, 2048)
	otherKP := jwks_testutil.Keypair{Kid: "kid-1", Private: other}
	token, _ := jwks_testutil.MintRS256JWT(otherKP, cfg.Issuer, "web-client", "google-123", clk.Now(), 5*time.Minute, nil, nil)
	if _, err := v.Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVerifier_Verify_JWKSRotation_OldKidRejected_NewKidAccepted(t *testing.T) {
	t.Parallel()

	v, clk, cfg, setKeys := newHarness(t, 1*time.Second)
	k1, _ := jwks_testutil.GenerateRSAKeypair("kid-1")
	k2, _ := jwks_testutil.GenerateRSAKeypair("kid-2")
	setKeys([]jwks_testutil.Keypair{k1})

	token1, _ := jwks_testutil.MintRS256JWT(k1, cfg.Issuer, "web-client", "google-123", clk.Now(), 5*time.Minute, nil, nil)
	if _, err := v.Verify(context.Background(), token1); err != nil {
		t.Fatalf("expected token1 to verify: %v", err)
	}

	// Rotate: JWKS now only contains kid-2.
	setKeys([]jwks_testutil.Keypair{k2})
	clk.Advance(2 * time.Second) // force interval refresh on next Verify call.

	if _, err := v.Verify(context.Background(), token1); err == nil {
		t.Fatalf("expected token1 to be rejected after rotation")
	}

	token2, _ := jwks_testutil.MintRS256JWT(k2, cfg.Issuer, "web-client", "google-456", clk.Now(), 5*time.Minute, nil, nil)
	claims, err := v.Verify(context.Background(), token2)
	if err != nil {
		t.Fatalf("expected token2 to verify: %v", err)
	}
	if claims.Subject != "google-456" {
		t.Fatalf("sub mismatch: got %q", claims.Subject)
	}
}

func TestReadUnverified(t *testing.T) {
	t.Parallel()

	kp, _ := jwks_testutil.GenerateRSAKeypair("kid-1")
	token, _ := jwks_testutil.MintRS256JWT(kp, "any", "any", "apple-001", time.Unix(1700000000, 0), time.Minute, nil, map[string]any{"email": "a@example.test"})

	claims, err := jwtverifier.ReadUnverified(token)
	if err != nil {
		t.Fatalf("ReadUnverified: %v", err)
	}
	if claims.Subject != "apple-001" || claims.Email != "a@example.test" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if _, err := jwtverifier.ReadUnverified("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
