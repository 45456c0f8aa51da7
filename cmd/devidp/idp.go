package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwks_testutil"
)

// provider is one identity provider the dev IdP impersonates.
type provider struct {
	Issuer   string
	Audience string
}

// grant is an authorization code handed out by /authorize and not yet exchanged.
type grant struct {
	subject   string
	claims    map[string]any
	challenge string
	expires   time.Time
}

type idp struct {
	key       jwks_testutil.Keypair
	jwks      []byte
	providers map[string]provider
	ttl       time.Duration
	now       func() time.Time
	log       *zap.Logger

	mu     sync.Mutex
	grants map[string]grant
}

const codeTTL = 5 * time.Minute

func newIDP(key jwks_testutil.Keypair, providers map[string]provider, ttl time.Duration, log *zap.Logger) (*idp, error) {
	b, err := jwks_testutil.MarshalJWKS(key)
	if err != nil {
		return nil, err
	}
	return &idp{
		key:       key,
		jwks:      b,
		providers: providers,
		ttl:       ttl,
		now:       time.Now,
		log:       log,
		grants:    map[string]grant{},
	}, nil
}

func (p *idp) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/.well-known/jwks.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(p.jwks)
	})
	// GET /{provider}/token?sub=...&email=...&given_name=...&family_name=...
	r.Get("/{provider}/token", p.mintHandler)
	// Google authorization-code flow: /google/authorize hands out a code, /google/oauth/token
	// trades it (with the PKCE verifier) for an id_token.
	r.Get("/google/authorize", p.authorizeHandler)
	r.Post("/google/oauth/token", p.exchangeHandler)
	return r
}

func identityClaims(q map[string][]string) map[string]any {
	claims := map[string]any{}
	for _, k := range []string{"email", "given_name", "family_name", "name", "picture"} {
		if v := strings.TrimSpace(first(q[k])); v != "" {
			claims[k] = v
		}
	}
	return claims
}

func first(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func (p *idp) mint(name, sub string, claims map[string]any) (string, error) {
	prov := p.providers[name]
	return jwks_testutil.MintRS256JWT(p.key, prov.Issuer, prov.Audience, sub, p.now().UTC(), p.ttl, nil, claims)
}

func (p *idp) mintHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	if _, ok := p.providers[name]; !ok {
		http.Error(w, "unknown provider", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	sub := strings.TrimSpace(q.Get("sub"))
	if sub == "" {
		http.Error(w, "missing sub", http.StatusBadRequest)
		return
	}
	token, err := p.mint(name, sub, identityClaims(q))
	if err != nil {
		p.log.Error("mint failed", zap.String("provider", name), zap.Error(err))
		http.Error(w, "failed to mint token", http.StatusInternalServerError)
		return
	}
	p.log.Info("token minted", zap.String("provider", name), zap.String("sub", sub))

	prov := p.providers[name]
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"sub":   sub,
		"iss":   prov.Issuer,
		"aud":   prov.Audience,
		"exp":   p.now().Add(p.ttl).Unix(),
	})
}

// authorizeHandler skips consent: the caller names the identity directly. code_challenge is
// the plain PKCE verifier; S256 challenges are not supported.
func (p *idp) authorizeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sub := strings.TrimSpace(q.Get("sub"))
	if sub == "" {
		http.Error(w, "missing sub", http.StatusBadRequest)
		return
	}
	code := uuid.NewString()
	p.mu.Lock()
	p.grants[code] = grant{
		subject:   sub,
		claims:    identityClaims(q),
		challenge: q.Get("code_challenge"),
		expires:   p.now().Add(codeTTL),
	}
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code})
}

func (p *idp) exchangeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oauthError(w, "invalid_request", "malformed form body")
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		oauthError(w, "unsupported_grant_type", "only authorization_code is supported")
		return
	}
	code := r.PostForm.Get("code")

	p.mu.Lock()
	g, ok := p.grants[code]
	delete(p.grants, code)
	p.mu.Unlock()

	switch {
	case !ok || p.now().After(g.expires):
		oauthError(w, "invalid_grant", "unknown or expired code")
		return
	case g.challenge != "" && g.challenge != r.PostForm.Get("code_verifier"):
		oauthError(w, "invalid_grant", "code_verifier does not match")
		return
	}

	idToken, err := p.mint("google", g.subject, g.claims)
	if err != nil {
		p.log.Error("mint failed", zap.String("provider", "google"), zap.Error(err))
		oauthError(w, "server_error", "failed to mint token")
		return
	}
	p.log.Info("code exchanged", zap.String("sub", g.subject))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": uuid.NewString(),
		"token_type":   "Bearer",
		"expires_in":   int(p.ttl.Seconds()),
		"id_token":     idToken,
	})
}

func oauthError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": desc})
}
