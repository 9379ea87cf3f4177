package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/justestif/go-music-browser/internal/auth"
	"github.com/justestif/go-music-browser/internal/library"
	"github.com/justestif/go-music-browser/internal/lyrics"
	"github.com/justestif/go-music-browser/internal/spotify"
)

type staticTokens string

func (s staticTokens) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

// upstreams are the fake external services behind a test server. Nil
// handlers answer 500.
type upstreams struct {
	catalog http.HandlerFunc
	token   http.HandlerFunc
	lyrics  http.HandlerFunc

	noCredentials bool
	secure        bool
}

type testEnv struct {
	handler     http.Handler
	catalogHits *atomic.Int32
	store       *library.MemoryStore
}

func newFakeServer(t *testing.T, h http.HandlerFunc, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if h == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		h(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestEnv(t *testing.T, up upstreams) *testEnv {
	t.Helper()

	var catalogHits atomic.Int32
	catalogServer := newFakeServer(t, up.catalog, &catalogHits)
	tokenServer := newFakeServer(t, up.token, nil)
	lyricsServer := newFakeServer(t, up.lyrics, nil)

	secret := "secret"
	if up.noCredentials {
		secret = ""
	}

	store := library.NewMemoryStore()
	srv, err := NewServer(ServerConfig{
		Secure: up.secure,
		Catalog: spotify.New(staticTokens("app-token"),
			spotify.WithBaseURL(catalogServer.URL),
			spotify.WithHTTPClient(catalogServer.Client()),
		),
		Auth: auth.NewAuthenticator(auth.AuthenticatorConfig{
			ClientID:     "client-id",
			ClientSecret: secret,
			RedirectURI:  "http://localhost:3000/api/auth/callback",
			TokenURL:     tokenServer.URL,
			HTTPClient:   tokenServer.Client(),
		}),
		Lyrics: lyrics.NewClient(
			lyrics.WithBaseURL(lyricsServer.URL),
			lyrics.WithHTTPClient(lyricsServer.Client()),
			lyrics.WithRetryDelays(),
		),
		Store: store,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	return &testEnv{handler: srv.Handler(), catalogHits: &catalogHits, store: store}
}

func (e *testEnv) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookie() *http.Cookie {
	return &http.Cookie{Name: accessTokenCookieName, Value: "user-token"}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return v
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, upstreams{})
	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	env := newTestEnv(t, upstreams{})

	for _, target := range []string{"/api/spotify/search", "/api/spotify/search?query=", "/api/spotify/search?query=%20%20"} {
		t.Run(target, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != `{"tracks":[],"artists":[],"albums":[]}` {
				t.Errorf("body = %s", got)
			}
		})
	}

	if got := env.catalogHits.Load(); got != 0 {
		t.Errorf("catalog hits = %d, want 0", got)
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, upstreams{catalog: func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "daft punk" {
			t.Errorf("q = %q, want trimmed query", got)
		}
		jsonHandler(`{
			"tracks": {"items": [{"id": "t1", "name": "Aerodynamic", "artists": [{"id": "a1", "name": "Daft Punk"}]}]},
			"artists": {"items": [{"id": "a1", "name": "Daft Punk", "followers": {"total": 9}}]},
			"albums": {"items": [{"id": "al1", "name": "Discovery", "artists": [{"name": "Daft Punk"}]}]}
		}`)(w, r)
	}})

	rec := env.do(t, http.MethodGet, "/api/spotify/search?query=+daft+punk+", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	got := decode[struct {
		Tracks  []spotify.TrackView    `json:"tracks"`
		Artists []spotify.ArtistView   `json:"artists"`
		Albums  []spotify.AlbumSummary `json:"albums"`
	}](t, rec)
	if len(got.Tracks) != 1 || got.Tracks[0].Artist != "Daft Punk" {
		t.Errorf("tracks = %+v", got.Tracks)
	}
	if len(got.Artists) != 1 || got.Artists[0].Followers != 9 {
		t.Errorf("artists = %+v", got.Artists)
	}
	if len(got.Albums) != 1 || got.Albums[0].Artist != "Daft Punk" {
		t.Errorf("albums = %+v", got.Albums)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t, upstreams{})

	rec := env.do(t, http.MethodGet, "/api/spotify/search?query=x", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error == "" {
		t.Error("expected error message")
	}
}

func TestHome(t *testing.T) {
	const releases = `{"albums":{"items":[{"id":"al1","name":"Album","artists":[{"name":"A"}],
		"tracks":{"items":[{"id":"t1","name":"One"},{"id":"t2","name":"Two"}]}}]}}`
	const featured = `{"playlists":{"items":[{"id":"p1","name":"Mix"}]}}`

	tests := []struct {
		name          string
		releasesOK    bool
		featuredOK    bool
		wantStatus    int
		wantTracks    int
		wantAlbums    int
		wantPlaylists int
	}{
		{"both succeed", true, true, http.StatusOK, 2, 1, 1},
		{"new releases fail", false, true, http.StatusOK, 0, 0, 1},
		{"featured fail", true, false, http.StatusOK, 2, 1, 0},
		{"both fail", false, false, http.StatusInternalServerError, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, upstreams{catalog: func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.URL.Path == "/browse/new-releases" && tt.releasesOK:
					jsonHandler(releases)(w, r)
				case r.URL.Path == "/browse/featured-playlists" && tt.featuredOK:
					jsonHandler(featured)(w, r)
				default:
					w.WriteHeader(http.StatusServiceUnavailable)
				}
			}})

			rec := env.do(t, http.MethodGet, "/api/spotify/home", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			got := decode[map[string][]json.RawMessage](t, rec)
			for key, want := range map[string]int{
				"tracks":            tt.wantTracks,
				"albums":            tt.wantAlbums,
				"featuredPlaylists": tt.wantPlaylists,
			} {
				section, ok := got[key]
				if !ok || section == nil {
					t.Errorf("%s missing or null", key)
				}
				if len(section) != want {
					t.Errorf("len(%s) = %d, want %d", key, len(section), want)
				}
			}

			for _, key := range []string{"albums", "featuredPlaylists"} {
				for _, card := range got[key] {
					fields := make(map[string]json.RawMessage)
					if err := json.Unmarshal(card, &fields); err != nil {
						t.Fatalf("decoding %s card: %v", key, err)
					}
					if _, ok := fields["artwork"]; !ok {
						t.Errorf("%s card missing artwork: %s", key, card)
					}
					if _, ok := fields["images"]; ok {
						t.Errorf("%s card has images, want artwork: %s", key, card)
					}
				}
			}
		})
	}
}

func TestTrack(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		upstream   http.HandlerFunc
		wantStatus int
		wantHits   int32
	}{
		{
			name:       "missing id",
			target:     "/api/spotify/track",
			wantStatus: http.StatusBadRequest,
			wantHits:   0,
		},
		{
			name:       "found",
			target:     "/api/spotify/track?id=t1",
			upstream:   jsonHandler(`{"id":"t1","name":"Song","duration_ms":61000}`),
			wantStatus: http.StatusOK,
			wantHits:   1,
		},
		{
			name:   "upstream error",
			target: "/api/spotify/track?id=nope",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantStatus: http.StatusInternalServerError,
			wantHits:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, upstreams{catalog: tt.upstream})

			rec := env.do(t, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := env.catalogHits.Load(); got != tt.wantHits {
				t.Errorf("catalog hits = %d, want %d", got, tt.wantHits)
			}
			if rec.Code == http.StatusOK {
				got := decode[map[string]spotify.TrackView](t, rec)
				if tr := got["track"]; tr.ID != "t1" || tr.Duration != 61 {
					t.Errorf("track = %+v", tr)
				}
			}
		})
	}
}

func TestUserRoutes_RequireSession(t *testing.T) {
	env := newTestEnv(t, upstreams{catalog: jsonHandler(`{"items":[]}`)})

	paths := []string{
		"/api/spotify/me/top/tracks",
		"/api/spotify/me/top/artists",
		"/api/spotify/me/recent",
		"/api/spotify/me/saved",
		"/api/profile",
		"/api/library/liked",
		"/api/library/liked/t1",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}

	if got := env.catalogHits.Load(); got != 0 {
		t.Errorf("catalog hits = %d, want 0", got)
	}
}

func TestTopArtists_KeepsCatalogFields(t *testing.T) {
	env := newTestEnv(t, upstreams{catalog: jsonHandler(`{"items":[{"id":"a1","name":"A","type":"artist",
		"uri":"spotify:artist:a1","external_urls":{"spotify":"https://open.spotify.com/artist/a1"},
		"genres":["house"],"followers":{"total":7}}]}`)})

	rec := env.do(t, http.MethodGet, "/api/spotify/me/top/artists", "", sessionCookie())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	got := decode[[]map[string]any](t, rec)
	if len(got) != 1 {
		t.Fatalf("artists = %d, want 1", len(got))
	}
	for _, key := range []string{"id", "name", "type", "uri", "external_urls", "genres", "followers"} {
		if _, ok := got[0][key]; !ok {
			t.Errorf("artist missing %q: %v", key, got[0])
		}
	}
	if got[0]["uri"] != "spotify:artist:a1" {
		t.Errorf("uri = %v, want spotify:artist:a1", got[0]["uri"])
	}
}

func TestUserRoutes_DegradeToEmpty(t *testing.T) {
	env := newTestEnv(t, upstreams{catalog: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}})

	for _, path := range []string{
		"/api/spotify/me/top/tracks",
		"/api/spotify/me/top/artists",
		"/api/spotify/me/recent",
		"/api/spotify/me/saved",
	} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, "", sessionCookie())
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
				t.Errorf("body = %s, want []", got)
			}
		})
	}
}

func TestUserRoutes_Params(t *testing.T) {
	var lastQuery atomic.Value
	env := newTestEnv(t, upstreams{catalog: func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Authorization = %q, want the session token", got)
		}
		lastQuery.Store(r.URL.Query())
		jsonHandler(`{"items":[{"id":"t1","name":"Top"}]}`)(w, r)
	}})

	tests := []struct {
		name          string
		target        string
		wantStatus    int
		wantLimit     string
		wantTimeRange string
	}{
		{"defaults", "/api/spotify/me/top/tracks", http.StatusOK, "10", "medium_term"},
		{"overrides", "/api/spotify/me/top/tracks?limit=5&time_range=short_term", http.StatusOK, "5", "short_term"},
		{"recent limit", "/api/spotify/me/recent?limit=50", http.StatusOK, "50", ""},
		{"limit too large", "/api/spotify/me/top/tracks?limit=51", http.StatusBadRequest, "", ""},
		{"limit not a number", "/api/spotify/me/saved?limit=ten", http.StatusBadRequest, "", ""},
		{"bad time range", "/api/spotify/me/top/artists?time_range=forever", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lastQuery.Store(url.Values{})
			rec := env.do(t, http.MethodGet, tt.target, "", sessionCookie())
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			q := lastQuery.Load().(url.Values)
			if got := q.Get("limit"); got != tt.wantLimit {
				t.Errorf("limit = %q, want %q", got, tt.wantLimit)
			}
			if got := q.Get("time_range"); got != tt.wantTimeRange {
				t.Errorf("time_range = %q, want %q", got, tt.wantTimeRange)
			}
		})
	}
}
