// Package lyrics looks up song lyrics from the lyrics.ovh API.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultBaseURL is the public lyrics.ovh API root.
	DefaultBaseURL = "https://api.lyrics.ovh/v1"

	// DefaultCacheSize caps the number of remembered lookups.
	DefaultCacheSize = 1024

	userAgent = "go-music-browser/1.0"
)

// ErrRateLimited is returned when the API keeps answering 429 after retries.
var ErrRateLimited = errors.New("rate limit exceeded")

// Client is a lyrics.ovh client with a bounded in-memory cache.
type Client struct {
	baseURL   string
	http      *resty.Client
	delays    []time.Duration
	cacheSize int

	// key = "{artist}\x00{title}"; a cached "" means no lyrics exist.
	cache *lru.Cache[string, string]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetTimeout(hc.Timeout)
	}
}

// WithRetryDelays sets the waits between attempts on a 429.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(c *Client) {
		c.delays = delays
	}
}

// WithCacheSize caps the cache at n entries, evicting the least recently
// used. Values below 1 keep the default.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// NewClient creates a lyrics client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		http:      resty.New().SetTimeout(10 * time.Second),
		delays:    []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("User-Agent", userAgent)

	// lru.New only fails for a non-positive size.
	c.cache, _ = lru.New[string, string](c.cacheSize)
	return c
}

type lyricsResponse struct {
	Lyrics string `json:"lyrics"`
	Error  string `json:"error"`
}

// Lookup returns the lyrics for a song, or "" when none are known.
// A blank artist or title returns "" without a request. Found and
// not-found results are cached; errors are not.
func (c *Client) Lookup(ctx context.Context, artist, title string) (string, error) {
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if artist == "" || title == "" {
		return "", nil
	}

	cacheKey := artist + "\x00" + title

	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}

	reqURL := c.baseURL + "/" + url.PathEscape(artist) + "/" + url.PathEscape(title)
	text, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return "", fmt.Errorf("fetching lyrics for %s - %s: %w", artist, title, err)
	}

	c.cache.Add(cacheKey, text)

	return text, nil
}

// doRequest performs the GET, retrying on 429 with the configured delays.
func (c *Client) doRequest(ctx context.Context, reqURL string) (string, error) {
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		text, err := c.doSingleRequest(ctx, reqURL)
		if errors.Is(err, ErrRateLimited) {
			continue
		}
		return text, err
	}

	return "", ErrRateLimited
}

func (c *Client) doSingleRequest(ctx context.Context, reqURL string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return "", nil
	case resp.StatusCode() == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case !resp.IsSuccess():
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	var body lyricsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return body.Lyrics, nil
}
