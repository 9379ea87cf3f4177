package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-music-browser/internal/library"
	"github.com/justestif/go-music-browser/internal/spotify"
)

// Lyrics looks up lyrics (GET /api/lyrics?artist=&title=). Always 200;
// lyrics is null when none are available or the lookup fails.
func (h *Handlers) Lyrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var lyrics *string
	if h.lyrics != nil {
		text, err := h.lyrics.Lookup(r.Context(), q.Get("artist"), q.Get("title"))
		if err != nil {
			h.logger.Warn("lyrics lookup failed", "err", err)
		}
		if text != "" {
			lyrics = &text
		}
	}

	writeJSON(w, http.StatusOK, map[string]*string{"lyrics": lyrics})
}

// Profile serves the stored profile (GET /api/profile). profile is null
// until one is saved.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.store.Profile(r.Context(), userID)
	if err != nil && !errors.Is(err, library.ErrNotFound) {
		h.logger.Error("loading profile failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]*library.Profile{"profile": profile})
}

// SaveProfile merges the submitted fields into the profile (PUT /api/profile).
func (h *Handlers) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	var update library.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile")
		return
	}

	profile, err := h.store.SaveProfile(r.Context(), userID, update)
	if err != nil {
		h.logger.Error("saving profile failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]*library.Profile{"profile": profile})
}

// LikedTracks lists liked tracks, most recent first (GET /api/library/liked).
func (h *Handlers) LikedTracks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	tracks, err := h.store.LikedTracks(r.Context(), userID)
	if err != nil {
		h.logger.Error("loading liked tracks failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load liked tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]library.LikedTrack{"tracks": tracks})
}

// LikeStatus reports whether a track is liked (GET /api/library/liked/{id}).
func (h *Handlers) LikeStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	trackID := chi.URLParam(r, "id")

	liked, err := h.store.IsLiked(r.Context(), userID, trackID)
	if err != nil {
		h.logger.Error("checking like failed", "user", userID, "track", trackID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to check liked track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// Like fetches the track from the catalog and stores it as liked
// (PUT /api/library/liked/{id}).
func (h *Handlers) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	trackID := chi.URLParam(r, "id")

	track, err := h.catalog.Track(r.Context(), trackID)
	if err != nil {
		var apiErr *spotify.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusBadRequest) {
			writeError(w, http.StatusNotFound, "Track not found")
			return
		}
		h.logger.Error("loading track to like failed", "track", trackID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load track")
		return
	}

	// A relinked track comes back under a different id. Keep the requested
	// one so status checks and unlikes by that id still match.
	view := spotify.MapTrack(track)
	view.ID = trackID

	liked, err := h.store.Like(r.Context(), userID, view, h.now().UTC())
	if err != nil {
		h.logger.Error("liking track failed", "user", userID, "track", trackID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to like track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"liked": true, "track": liked})
}

// Unlike removes a like (DELETE /api/library/liked/{id}).
func (h *Handlers) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}
	trackID := chi.URLParam(r, "id")

	if err := h.store.Unlike(r.Context(), userID, trackID); err != nil {
		h.logger.Error("unliking track failed", "user", userID, "track", trackID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to unlike track")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"liked": false})
}

// currentUserID resolves the catalog user behind the session token. A token
// the catalog rejects is a 401; any other failure is a 500.
func (h *Handlers) currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := h.catalog.CurrentUser(r.Context(), accessToken(r.Context()))
	if err != nil {
		var apiErr *spotify.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			writeError(w, http.StatusUnauthorized, "Spotify session expired")
			return "", false
		}
		h.logger.Error("resolving spotify user failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve user")
		return "", false
	}
	if strings.TrimSpace(user.ID) == "" {
		writeError(w, http.StatusInternalServerError, "Failed to resolve user")
		return "", false
	}
	return user.ID, true
}
