// Package sessiontoken issues and checks the HS256 session tokens of the dev backend.
package sessiontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalid = errors.New("invalid session token")

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Options struct {
	Issuer string
	TTL    time.Duration
	// Clock defaults to wall time.
	Clock Clock
	// Leeway is the clock skew tolerated when checking exp and nbf.
	Leeway time.Duration
}

// Issuer signs session tokens for one user at a time and verifies them on the way back in.
type Issuer struct {
	key    []byte
	opts   Options
	parser *jwt.Parser
}

func New(signingKey []byte, opts Options) (*Issuer, error) {
	if len(signingKey) < 32 {
		return nil, errors.New("sessiontoken: signing key must be at least 32 bytes")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("sessiontoken: ttl must be positive")
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	clk := opts.Clock
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithTimeFunc(func() time.Time { return clk.Now() }),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	return &Issuer{key: signingKey, opts: opts, parser: jwt.NewParser(parserOpts...)}, nil
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.opts.TTL }

// Issue returns a token whose subject is subject, and its expiry.
func (i *Issuer) Issue(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("sessiontoken: empty subject")
	}
	now := i.opts.Clock.Now().UTC().Truncate(time.Second)
	exp := now.Add(i.opts.TTL)
	claims := jwt.RegisteredClaims{
		Issuer:    i.opts.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sessiontoken: sign: %w", err)
	}
	return tok, exp, nil
}

// Verify returns the subject of a valid token.
func (i *Issuer) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, err := i.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub", ErrInvalid)
	}
	return claims.Subject, nil
}
