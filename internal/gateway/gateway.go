// Package gateway performs HTTP calls against the LearnABLE backend. Every
// call returns either a successful response or an *api.ErrorRecord, and a
// 401 answer is followed by at most one token refresh and retry
package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	app "github.com/kode4food/learnable"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

type (
	// Gateway performs authenticated HTTP calls against one backend
	Gateway struct {
		client        *http.Client
		tokens        Tokens
		loginRequired LoginRequiredFunc
		baseURL       string
		userAgent     string
		now           func() time.Time
	}

	// Tokens is the session token source consulted by the Gateway
	Tokens interface {
		// AccessToken returns the current access token or an empty string
		AccessToken(context.Context) (string, error)

		// RefreshToken returns the current refresh token or an empty string
		RefreshToken(context.Context) (string, error)

		// SetTokens stores a refreshed access token. An empty refresh token
		// keeps the stored one
		SetTokens(ctx context.Context, access, refresh string) error

		// Clear removes all local session state
		Clear(context.Context) error
	}

	// LoginRequiredFunc is invoked after an irrecoverable authentication
	// failure has cleared the session
	LoginRequiredFunc func(context.Context)

	// Option configures a Gateway
	Option func(*Gateway)
)

const headerUserAgent = app.Name + "/" + app.Version

// New creates a Gateway for the backend at baseURL. tokens may be nil, in
// which case no bearer header is attached and no refresh is attempted
func New(baseURL string, tokens Tokens, opts ...Option) *Gateway {
	g := &Gateway{
		client:    &http.Client{},
		tokens:    tokens,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: headerUserAgent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

// WithTimeout bounds every HTTP call. Zero means no timeout
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		c := *g.client
		c.Timeout = d
		g.client = &c
	}
}

// WithLoginRequired registers the callback that sends the user back to the
// login entry point
func WithLoginRequired(fn LoginRequiredFunc) Option {
	return func(g *Gateway) {
		g.loginRequired = fn
	}
}

// WithClock replaces the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// BaseURL returns the backend root this Gateway calls
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Get performs a GET request
func (g *Gateway) Get(ctx context.Context, path string) (*api.Response, error) {
	return g.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with an optional body
func (g *Gateway) Post(
	ctx context.Context, path string, body Body,
) (*api.Response, error) {
	return g.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with an optional body
func (g *Gateway) Put(
	ctx context.Context, path string, body Body,
) (*api.Response, error) {
	return g.Do(ctx, http.MethodPut, path, body)
}

// Patch performs a PATCH request with an optional body
func (g *Gateway) Patch(
	ctx context.Context, path string, body Body,
) (*api.Response, error) {
	return g.Do(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request with an optional body
func (g *Gateway) Delete(
	ctx context.Context, path string, body Body,
) (*api.Response, error) {
	return g.Do(ctx, http.MethodDelete, path, body)
}

// Do performs one request. On a 401 outside a login context a single token
// refresh is attempted and, if it succeeds, the request is retried once. A
// failed refresh clears the session and invokes the login callback. The
// returned error is always an *api.ErrorRecord
func (g *Gateway) Do(
	ctx context.Context, method, path string, body Body,
) (*api.Response, error) {
	refreshed := false
	if g.accessExpired(ctx) {
		refreshed = true
		if err := g.refresh(ctx); err != nil {
			slog.Warn("Expired session could not be refreshed",
				log.Path(path),
				log.Error(err))
			g.endSession(ctx)
			return nil, &api.ErrorRecord{
				Kind:       api.ErrorAuth,
				Message:    api.ErrorAuth.DefaultMessage(),
				HTTPStatus: http.StatusUnauthorized,
			}
		}
	}

	for {
		res, err := g.send(ctx, method, path, body)
		if err == nil || refreshed || !g.canRefresh(ctx, err) {
			return res, err
		}

		refreshed = true
		if rerr := g.refresh(ctx); rerr != nil {
			slog.Warn("Token refresh failed",
				log.Path(path),
				log.Error(rerr))
			g.endSession(ctx)
			return nil, err
		}
		slog.Debug("Token refreshed, retrying request",
			log.Method(method),
			log.Path(path))
	}
}

func (g *Gateway) send(
	ctx context.Context, method, path string, body Body,
) (*api.Response, error) {
	var reader io.Reader
	var contentType string
	if body != nil {
		r, ct, err := body.Encode()
		if err != nil {
			return nil, &api.ErrorRecord{
				Kind:    api.ErrorValidation,
				Message: "Failed to encode request body",
				Raw:     err.Error(),
			}
		}
		reader, contentType = r, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, &api.ErrorRecord{
			Kind:    api.ErrorUnknown,
			Message: "Failed to create request",
			Raw:     err.Error(),
		}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", api.ContentJSON)
	req.Header.Set("User-Agent", g.userAgent)
	if tok := g.bearer(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	dur := time.Since(start)
	if err != nil {
		slog.Error("HTTP request failed",
			log.Method(method),
			log.Path(path),
			slog.Duration("duration", dur),
			log.Error(err))
		return nil, &api.ErrorRecord{
			Kind:    api.ErrorNetwork,
			Message: api.MsgNetworkFailure,
			Raw:     err.Error(),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	res, err := readResponse(resp)
	if err != nil {
		rec := api.AsErrorRecord(err)
		if form, ok := body.(*Form); ok &&
			rec.HTTPStatus == http.StatusInternalServerError {
			rec.Message = formServerError(form)
		}
		slog.Error("HTTP error",
			log.Method(method),
			log.Path(path),
			log.Status(rec.HTTPStatus),
			log.ErrorKind(rec.Kind),
			slog.String("message", rec.Message))
		return nil, rec
	}

	slog.Debug("HTTP request completed",
		log.Method(method),
		log.Path(path),
		log.Status(res.Status),
		slog.Duration("duration", dur))
	return res, nil
}

func (g *Gateway) bearer(ctx context.Context) string {
	if g.tokens == nil || isRefreshCall(ctx) {
		return ""
	}
	tok, err := g.tokens.AccessToken(ctx)
	if err != nil {
		slog.Warn("Failed to read access token", log.Error(err))
		return ""
	}
	return tok
}

func (g *Gateway) endSession(ctx context.Context) {
	if err := g.tokens.Clear(ctx); err != nil {
		slog.Error("Failed to clear session", log.Error(err))
	}
	if g.loginRequired != nil {
		g.loginRequired(ctx)
	}
}
