// Package backendhttp is the REST client for the Kickoff backend. Every failure it returns is
// an *apierr.Error decoded once here.
package backendhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
)

const (
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// TokenSource supplies the bearer token for authenticated calls. An empty token means the
// call is made anonymously.
type TokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}

type Options struct {
	// HTTPClient overrides the default client (DefaultTimeout).
	HTTPClient *http.Client
	Timeout    time.Duration
	Tokens     TokenSource
	Logger     *zap.Logger
}

type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backendhttp: invalid base URL %q", baseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:   u,
		http:   hc,
		tokens: opts.Tokens,
		log:    logger.OrNop(opts.Logger),
	}, nil
}

type call struct {
	op     string
	method string
	// segments are raw path segments; each is styled and escaped.
	segments []string
	query    url.Values
	header   http.Header
	in       any
	out      any
}

// queryParam appends a form-styled query parameter to q.
func queryParam(q url.Values, name string, value any) error {
	styled, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("style query param %s: %w", name, err)
	}
	parsed, err := url.ParseQuery(styled)
	if err != nil {
		return fmt.Errorf("parse query param %s: %w", name, err)
	}
	for k, vs := range parsed {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return nil
}

func pathParam(name string, value any) (string, error) {
	return runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
}

func (c *Client) do(ctx context.Context, cl call) (int, error) {
	u := c.base.JoinPath(cl.segments...)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return 0, apierr.Transport(cl.op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return 0, apierr.Transport(cl.op, err)
	}
	for k, vs := range cl.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if cl.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		tok, err := c.tokens.BearerToken(ctx)
		if err != nil {
			return 0, apierr.Transport(cl.op, fmt.Errorf("bearer token: %w", err))
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("backend request failed",
			zap.String("op", cl.op),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return 0, apierr.Transport(cl.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, apierr.Transport(cl.op, fmt.Errorf("read response: %w", err))
	}
	c.log.Debug("backend request",
		zap.String("op", cl.op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		eb := decodeErrorBody(raw)
		return resp.StatusCode, apierr.Backend(cl.op, resp.StatusCode, eb.code, eb.reason)
	}
	if cl.out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, cl.out); err != nil {
			return resp.StatusCode, apierr.Decode(cl.op, resp.StatusCode, err)
		}
	}
	return resp.StatusCode, nil
}
