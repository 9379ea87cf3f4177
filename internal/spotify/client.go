// Package spotify is a thin gateway over the Spotify Web API catalog
// endpoints used by the music browser, plus the normalization of catalog
// objects into the views served to clients.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/justestif/go-music-browser/internal/logging"
)

const (
	// DefaultBaseURL is the catalog API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultMarket qualifies catalog lookups when none is configured.
	DefaultMarket = "US"

	// DefaultTimeout bounds every outbound catalog call.
	DefaultTimeout = 10 * time.Second
)

// ErrNoTokenProvider is returned when a request needs an app token but the
// gateway was built without a provider.
var ErrNoTokenProvider = errors.New("no token provider configured")

// TokenProvider supplies app-level bearer tokens.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// tokenInvalidator is implemented by providers that can drop a cached token,
// such as auth.TokenManager.
type tokenInvalidator interface {
	Invalidate()
}

// APIError is returned for any non-2xx catalog response.
type APIError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api error: %d - %s (endpoint: %s)", e.StatusCode, e.Body, e.Endpoint)
}

// Gateway issues authenticated catalog requests.
type Gateway struct {
	tokens     TokenProvider
	baseURL    string
	market     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	http *resty.Client
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBaseURL points the gateway at a different API root.
func WithBaseURL(u string) Option {
	return func(g *Gateway) {
		g.baseURL = strings.TrimRight(u, "/")
	}
}

// WithMarket sets the market used for region-qualified lookups.
func WithMarket(market string) Option {
	return func(g *Gateway) {
		if market != "" {
			g.market = market
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

// WithRateLimit caps outbound requests per second. Zero or less disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(g *Gateway) {
		if perSecond <= 0 {
			g.limiter = nil
			return
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

// WithLogger sets the logger used for degraded calls.
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Gateway that draws app tokens from tokens.
func New(tokens TokenProvider, opts ...Option) *Gateway {
	g := &Gateway{
		tokens:  tokens,
		baseURL: DefaultBaseURL,
		market:  DefaultMarket,
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.httpClient != nil {
		g.http = resty.NewWithClient(g.httpClient)
	} else {
		g.http = resty.New()
	}
	g.http.SetTimeout(g.timeout)

	return g
}

// Market returns the configured market.
func (g *Gateway) Market() string {
	return g.market
}

// RequestOptions controls a single catalog request.
type RequestOptions struct {
	Query   url.Values
	Headers map[string]string

	// BearerToken is a delegated user token. When set, or when Headers
	// already carries Authorization, the TokenProvider is not consulted.
	BearerToken string
}

// Request performs a GET against endpoint (relative to the base URL) and
// decodes the JSON response into out. out may be nil. An app-token request
// rejected with 401 is retried once with a fresh token when the provider
// can invalidate its cache.
func (g *Gateway) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	authorization := headerValue(opts.Headers, "Authorization")
	if opts.BearerToken != "" {
		authorization = "Bearer " + opts.BearerToken
	}
	appToken := authorization == ""

	resp, err := g.send(ctx, endpoint, opts, authorization)
	if err != nil {
		return err
	}
	if appToken && resp.StatusCode() == http.StatusUnauthorized {
		if inv, ok := g.tokens.(tokenInvalidator); ok {
			g.logger.Warn("app token rejected; refreshing", "endpoint", endpoint)
			inv.Invalidate()
			if resp, err = g.send(ctx, endpoint, opts, ""); err != nil {
				return err
			}
		}
	}

	if !resp.IsSuccess() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
			Endpoint:   endpoint,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

// send issues one GET. An empty authorization is filled from the
// TokenProvider.
func (g *Gateway) send(ctx context.Context, endpoint string, opts RequestOptions, authorization string) (*resty.Response, error) {
	if authorization == "" {
		if g.tokens == nil {
			return nil, ErrNoTokenProvider
		}
		token, err := g.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting access token: %w", err)
		}
		authorization = "Bearer " + token
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(opts.Headers).
		SetHeader("Authorization", authorization).
		Get(g.requestURL(endpoint, opts.Query))
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	return resp, nil
}

// requestURL joins the endpoint and query. Spaces are sent as %20 rather
// than the form-style '+'.
func (g *Gateway) requestURL(endpoint string, query url.Values) string {
	u := g.baseURL + endpoint
	if len(query) == 0 {
		return u
	}
	return u + "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
