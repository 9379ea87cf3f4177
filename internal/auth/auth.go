package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes requested for the delegated user session.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopeUserReadRecentlyPlayed,
	spotifyauth.ScopeUserLibraryRead,
}

// AuthenticatorConfig configures the delegated authorization-code flow.
// Empty endpoint URLs default to the Spotify accounts service.
type AuthenticatorConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// Authenticator drives the authorization-code flow that yields a user's
// access and refresh tokens. It never refreshes them.
type Authenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(cfg AuthenticatorConfig) *Authenticator {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: exchangeTimeout}
	}

	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
	}
}

// AuthURL returns the provider authorize URL carrying the given state.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's tokens.
// A rejection by the token endpoint is returned as *ExchangeError.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if a.config.ClientID == "" || a.config.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if code == "" {
		return nil, ErrMissingCode
	}

	tok, err := a.config.Exchange(context.WithValue(ctx, oauth2.HTTPClient, a.httpClient), code)
	if err != nil {
		return nil, exchangeError(err)
	}
	return tok, nil
}

// NewState creates a random state value for CSRF protection.
func NewState() string {
	return uuid.NewString()
}
