package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/justestif/go-music-browser/internal/auth"
	"github.com/justestif/go-music-browser/internal/library"
	"github.com/justestif/go-music-browser/internal/spotify"
)

// Catalog is the catalog gateway as used by the handlers.
type Catalog interface {
	HomeSections(ctx context.Context) spotify.HomeSections
	Search(ctx context.Context, query string) (*spotify.SearchResponse, error)
	Track(ctx context.Context, id string) (*spotify.Track, error)
	UserTopArtists(ctx context.Context, token, timeRange string, limit int) spotify.Result[[]spotify.Artist]
	UserTopTracks(ctx context.Context, token, timeRange string, limit int) spotify.Result[[]*spotify.TrackView]
	UserSavedTracks(ctx context.Context, token string, limit int) spotify.Result[[]*spotify.TrackView]
	UserRecentlyPlayed(ctx context.Context, token string, limit int) spotify.Result[[]*spotify.TrackView]
	CurrentUser(ctx context.Context, token string) (*spotify.User, error)
}

// Authenticator runs the delegated authorization code flow.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// LyricsFinder looks up lyrics. "" means none were found.
type LyricsFinder interface {
	Lookup(ctx context.Context, artist, title string) (string, error)
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	catalog Catalog
	auth    Authenticator
	lyrics  LyricsFinder
	store   library.Store
	cookies cookies
	logger  *log.Logger
	now     func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg ServerConfig) *Handlers {
	return &Handlers{
		catalog: cfg.Catalog,
		auth:    cfg.Auth,
		lyrics:  cfg.Lyrics,
		store:   cfg.Store,
		cookies: cookies{secure: cfg.Secure},
		logger:  cfg.Logger,
		now:     time.Now,
	}
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// Login starts the delegated OAuth flow (GET /api/auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state := auth.NewState()

	// Stored for validation on callback.
	h.cookies.setState(w, state)

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the OAuth flow (GET /api/auth/callback).
// Every outcome is a redirect; failures land on /login with an error code.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	state := query.Get("state")
	if state == "" || state != cookieValue(r, stateCookieName) {
		redirectLogin(w, r, "state_mismatch")
		return
	}
	h.cookies.clear(w, stateCookieName)

	if errMsg := query.Get("error"); errMsg != "" {
		h.logger.Warn("spotify authorization denied", "error", errMsg)
		redirectLogin(w, r, errMsg)
		return
	}

	token, err := h.auth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		h.logger.Error("token exchange failed", "err", err)

		var exErr *auth.ExchangeError
		if errors.As(err, &exErr) || errors.Is(err, auth.ErrMissingCode) {
			redirectLogin(w, r, "invalid_token")
			return
		}
		redirectLogin(w, r, "server_error")
		return
	}

	h.cookies.setTokens(w, token.AccessToken, auth.ExpiresIn(token, h.now()), token.RefreshToken)
	http.Redirect(w, r, "/home", http.StatusTemporaryRedirect)
}

// AuthStatus reports whether a delegated session cookie is present (GET /api/auth/me).
// The token itself is not validated.
func (h *Handlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"isAuthenticated": accessTokenFromCookie(r) != "",
	})
}

// Logout clears the delegated session cookies (POST /api/auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clearTokens(w)
	w.WriteHeader(http.StatusNoContent)
}

func redirectLogin(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}
