package web

import (
	"net/http"
	"time"
)

const (
	stateCookieName        = "spotify_auth_state"
	accessTokenCookieName  = "spotify_access_token"
	refreshTokenCookieName = "spotify_refresh_token"

	stateTTL        = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// cookies writes the session cookies. All are httpOnly and site-wide.
type cookies struct {
	secure bool
}

func (c cookies) set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

func (c cookies) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		MaxAge:   -1,
	})
}

func (c cookies) setState(w http.ResponseWriter, state string) {
	c.set(w, stateCookieName, state, stateTTL)
}

// setTokens stores the delegated tokens. The access token cookie lives
// exactly as long as the token.
func (c cookies) setTokens(w http.ResponseWriter, accessToken string, expiresIn time.Duration, refreshToken string) {
	c.set(w, accessTokenCookieName, accessToken, expiresIn)
	if refreshToken != "" {
		c.set(w, refreshTokenCookieName, refreshToken, refreshTokenTTL)
	}
}

func (c cookies) clearTokens(w http.ResponseWriter) {
	c.clear(w, accessTokenCookieName)
	c.clear(w, refreshTokenCookieName)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func accessTokenFromCookie(r *http.Request) string {
	return cookieValue(r, accessTokenCookieName)
}
