// Package auth provides catalog API credentials: an app-level client-credentials
// token manager and the delegated authorization-code flow for user sessions.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultExpiryBuffer is how long before expiry a cached token stops being served.
	DefaultExpiryBuffer = 5 * time.Minute

	exchangeTimeout = 10 * time.Second
	refreshKey      = "client-credentials"
)

var (
	// ErrMissingCredentials is returned when the client id or secret is not configured.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET")

	// ErrMissingCode is returned when a callback carries no authorization code.
	ErrMissingCode = errors.New("missing authorization code")
)

// ExchangeError is returned when the token endpoint answers with a non-success status.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %d - %s", e.StatusCode, e.Body)
}

// credential is the cached app-level access token.
type credential struct {
	token     string
	expiresAt time.Time
}

// TokenManager hands out an app-level access token, refreshing it through the
// client-credentials grant when the cached one is missing or close to expiry.
// Concurrent refreshes are collapsed into a single exchange.
type TokenManager struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time
	buffer       time.Duration

	mu     sync.RWMutex
	cached *credential

	group singleflight.Group
}

// TokenManagerOption configures a TokenManager.
type TokenManagerOption func(*TokenManager)

// WithTokenURL overrides the token endpoint.
func WithTokenURL(u string) TokenManagerOption {
	return func(m *TokenManager) {
		if u != "" {
			m.tokenURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for token exchanges.
func WithHTTPClient(c *http.Client) TokenManagerOption {
	return func(m *TokenManager) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithExpiryBuffer sets how long before expiry a token is treated as invalid.
func WithExpiryBuffer(d time.Duration) TokenManagerOption {
	return func(m *TokenManager) {
		if d >= 0 {
			m.buffer = d
		}
	}
}

// NewTokenManager creates a TokenManager. Missing credentials are not an
// error here; AccessToken reports them on first use.
func NewTokenManager(clientID, clientSecret string, opts ...TokenManagerOption) *TokenManager {
	m := &TokenManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyauth.TokenURL,
		httpClient:   &http.Client{Timeout: exchangeTimeout},
		now:          time.Now,
		buffer:       DefaultExpiryBuffer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AccessToken returns a token that is valid for at least the expiry buffer.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	if tok, ok := m.fresh(); ok {
		return tok, nil
	}

	if m.clientID == "" || m.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	ch := m.group.DoChan(refreshKey, func() (any, error) {
		// A caller that lost the race may arrive after the refresh landed.
		if tok, ok := m.fresh(); ok {
			return tok, nil
		}
		// Waiters share this exchange, so it must outlive any single caller.
		exCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exchangeTimeout)
		defer cancel()
		return m.refresh(exCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Invalidate drops the cached token so the next call performs an exchange.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.cached = nil
	m.mu.Unlock()
}

// fresh returns the cached token if it is outside the expiry buffer.
func (m *TokenManager) fresh() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cached == nil {
		return "", false
	}
	if !m.now().Before(m.cached.expiresAt.Add(-m.buffer)) {
		return "", false
	}
	return m.cached.token, true
}

// refresh performs one client-credentials exchange and replaces the cache.
func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	cfg := &clientcredentials.Config{
		ClientID:     m.clientID,
		ClientSecret: m.clientSecret,
		TokenURL:     m.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	issuedAt := m.now()
	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, m.httpClient))
	if err != nil {
		return "", exchangeError(err)
	}

	m.mu.Lock()
	m.cached = &credential{
		token:     tok.AccessToken,
		expiresAt: issuedAt.Add(ExpiresIn(tok, issuedAt)),
	}
	m.mu.Unlock()

	return tok.AccessToken, nil
}

// exchangeError converts an oauth2 retrieval failure into an ExchangeError
// carrying the endpoint's status and body.
func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &ExchangeError{StatusCode: re.Response.StatusCode, Body: string(re.Body)}
	}
	return fmt.Errorf("requesting access token: %w", err)
}

// ExpiresIn reads the token lifetime from the raw "expires_in" field, falling
// back to the parsed expiry relative to now. Zero means unknown.
func ExpiresIn(tok *oauth2.Token, now time.Time) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Duration(n) * time.Second
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	if d := tok.Expiry.Sub(now); d > 0 {
		return d
	}
	return 0
}
