// Package config loads application configuration from a TOML file, a .env file,
// and the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

const (
	DefaultAddr        = "127.0.0.1:3000"
	DefaultRedirectURI = "http://localhost:3000/api/auth/callback"
	DefaultMarket      = "US"
	DefaultAPIBaseURL  = "https://api.spotify.com/v1"
	DefaultLyricsURL   = "https://api.lyrics.ovh/v1"

	envProduction = "production"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Lyrics   LyricsConfig   `toml:"lyrics"`
	Log      LogConfig      `toml:"log"`
}

// SpotifyConfig holds catalog API credentials and endpoints.
// Empty credentials are allowed here; they fail at the first token request.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	Market       string `toml:"market"`
	APIBaseURL   string `toml:"api_base_url"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
	// RateLimit caps outbound catalog requests per second. Zero disables it.
	RateLimit float64 `toml:"rate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	Environment string `toml:"environment"`
}

// DatabaseConfig holds the PostgreSQL connection string.
// An empty URL selects the in-memory library store.
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// LyricsConfig holds the lyrics lookup endpoint.
type LyricsConfig struct {
	BaseURL string `toml:"base_url"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: DefaultRedirectURI,
			Market:      DefaultMarket,
			APIBaseURL:  DefaultAPIBaseURL,
			AuthURL:     spotifyauth.AuthURL,
			TokenURL:    spotifyauth.TokenURL,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Lyrics: LyricsConfig{
			BaseURL: DefaultLyricsURL,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty or the file does not exist), a .env file in the working
// directory, and environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields with any non-empty environment variables.
func (c *Config) applyEnv() {
	setFromEnv(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setFromEnv(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setFromEnv(&c.Spotify.RedirectURI, "SPOTIFY_REDIRECT_URI")
	setFromEnv(&c.Spotify.Market, "SPOTIFY_MARKET")
	setFromEnv(&c.Database.URL, "DATABASE_URL")
	setFromEnv(&c.Lyrics.BaseURL, "LYRICS_BASE_URL")
	setFromEnv(&c.Server.Addr, "ADDR")
	setFromEnv(&c.Server.Environment, "APP_ENV")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate reports whether the configuration can be used to start the server.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server address is empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.Spotify.RedirectURI)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: redirect URI %q must be an absolute URL", ErrInvalidConfig, c.Spotify.RedirectURI)
	}
	if c.Spotify.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Production reports whether the server runs in production mode (secure cookies).
func (c *Config) Production() bool {
	return strings.EqualFold(c.Server.Environment, envProduction)
}
