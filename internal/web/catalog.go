package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/justestif/go-music-browser/internal/spotify"
)

const (
	defaultUserLimit = 10
	maxUserLimit     = 50
)

type homeResponse struct {
	Tracks            []*spotify.TrackView      `json:"tracks"`
	Albums            []spotify.AlbumCard    `json:"albums"`
	FeaturedPlaylists []spotify.PlaylistCard `json:"featuredPlaylists"`
}

type searchResponse struct {
	Tracks  []*spotify.TrackView   `json:"tracks"`
	Artists []spotify.ArtistView   `json:"artists"`
	Albums  []spotify.AlbumSummary `json:"albums"`
}

// Home serves the home feed (GET /api/spotify/home). A failed section is
// served empty; only a failure of both sections is an error.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	sections := h.catalog.HomeSections(r.Context())
	if !sections.NewReleases.OK() && !sections.Featured.OK() {
		writeError(w, http.StatusInternalServerError, "Failed to load Spotify home content")
		return
	}

	var albums []spotify.Album
	if releases := sections.NewReleases.Or(nil); releases != nil {
		albums = releases.Albums.Items
	}
	var playlists []*spotify.Playlist
	if featured := sections.Featured.Or(nil); featured != nil {
		playlists = featured.Playlists.Items
	}

	writeJSON(w, http.StatusOK, homeResponse{
		Tracks:            spotify.TracksFromNewReleases(albums),
		Albums:            spotify.MapAlbumCards(albums),
		FeaturedPlaylists: spotify.MapPlaylistCards(playlists),
	})
}

// Search searches the catalog (GET /api/spotify/search?query=).
// A blank query returns empty results without calling the catalog.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusOK, searchResponse{
			Tracks:  []*spotify.TrackView{},
			Artists: []spotify.ArtistView{},
			Albums:  []spotify.AlbumSummary{},
		})
		return
	}

	data, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("spotify search failed", "query", query, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to search Spotify")
		return
	}

	resp := searchResponse{
		Tracks:  []*spotify.TrackView{},
		Artists: []spotify.ArtistView{},
		Albums:  []spotify.AlbumSummary{},
	}
	if data.Tracks != nil {
		tracks := make([]*spotify.Track, len(data.Tracks.Items))
		for i := range data.Tracks.Items {
			tracks[i] = &data.Tracks.Items[i]
		}
		resp.Tracks = spotify.MapTracks(tracks)
	}
	if data.Artists != nil {
		resp.Artists = spotify.MapArtists(data.Artists.Items)
	}
	if data.Albums != nil {
		resp.Albums = spotify.MapAlbumSummaries(data.Albums.Items)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Track serves one normalized track (GET /api/spotify/track?id=).
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing track id")
		return
	}

	track, err := h.catalog.Track(r.Context(), id)
	if err != nil {
		h.logger.Error("spotify track lookup failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]*spotify.TrackView{"track": spotify.MapTrack(track)})
}

// TopTracks serves the user's top tracks (GET /api/spotify/me/top/tracks).
func (h *Handlers) TopTracks(w http.ResponseWriter, r *http.Request) {
	params, ok := parseUserParams(w, r)
	if !ok {
		return
	}
	res := h.catalog.UserTopTracks(r.Context(), accessToken(r.Context()), params.timeRange, params.limit)
	writeJSON(w, http.StatusOK, res.Or([]*spotify.TrackView{}))
}

// TopArtists serves the user's top artists (GET /api/spotify/me/top/artists).
func (h *Handlers) TopArtists(w http.ResponseWriter, r *http.Request) {
	params, ok := parseUserParams(w, r)
	if !ok {
		return
	}
	res := h.catalog.UserTopArtists(r.Context(), accessToken(r.Context()), params.timeRange, params.limit)
	writeJSON(w, http.StatusOK, res.Or([]spotify.Artist{}))
}

// RecentlyPlayed serves recently played tracks (GET /api/spotify/me/recent).
func (h *Handlers) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	params, ok := parseUserParams(w, r)
	if !ok {
		return
	}
	res := h.catalog.UserRecentlyPlayed(r.Context(), accessToken(r.Context()), params.limit)
	writeJSON(w, http.StatusOK, res.Or([]*spotify.TrackView{}))
}

// SavedTracks serves the user's liked tracks (GET /api/spotify/me/saved).
func (h *Handlers) SavedTracks(w http.ResponseWriter, r *http.Request) {
	params, ok := parseUserParams(w, r)
	if !ok {
		return
	}
	res := h.catalog.UserSavedTracks(r.Context(), accessToken(r.Context()), params.limit)
	writeJSON(w, http.StatusOK, res.Or([]*spotify.TrackView{}))
}

type userParams struct {
	limit     int
	timeRange string
}

// parseUserParams reads the optional limit and time_range query parameters,
// writing a 400 when either is invalid.
func parseUserParams(w http.ResponseWriter, r *http.Request) (userParams, bool) {
	p := userParams{limit: defaultUserLimit, timeRange: spotify.MediumTerm}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxUserLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return p, false
		}
		p.limit = n
	}

	if raw := q.Get("time_range"); raw != "" {
		if !spotify.ValidTimeRange(raw) {
			writeError(w, http.StatusBadRequest, "time_range must be short_term, medium_term, or long_term")
			return p, false
		}
		p.timeRange = raw
	}

	return p, true
}
