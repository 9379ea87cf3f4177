package spotify

import "strings"

// UnknownArtist is shown when a track lists no artists.
const UnknownArtist = "Unknown Artist"

// maxReleaseAlbums bounds how many new-release albums feed the home track list.
const maxReleaseAlbums = 10

// TrackView is the normalized track served to clients.
type TrackView struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Artist            string  `json:"artist"`
	ArtistID          *string `json:"artistId"`
	Album             string  `json:"album"`
	AlbumID           *string `json:"albumId"`
	Duration          int     `json:"duration"`
	Artwork           Artwork `json:"artwork"`
	ResolvedStreamURL *string `json:"resolvedStreamUrl"`
	PreviewURL        *string `json:"previewUrl"`
	SpotifyURL        string  `json:"spotifyUrl"`
	URI               string  `json:"uri"`
	Popularity        int     `json:"popularity"`
	Explicit          bool    `json:"explicit"`
	ReleaseDate       *string `json:"releaseDate"`
}

// Artwork holds one URL per display size. Empty slots are omitted.
type Artwork struct {
	Small    string `json:"150x150,omitempty"`
	Medium   string `json:"300x300,omitempty"`
	Large    string `json:"500x500,omitempty"`
	Original string `json:"original,omitempty"`
}

// MapTrack normalizes a catalog track. A nil track maps to nil.
func MapTrack(t *Track) *TrackView {
	if t == nil {
		return nil
	}

	var album Album
	if t.Album != nil {
		album = *t.Album
	}

	v := &TrackView{
		ID:          t.ID,
		Title:       t.Name,
		Artist:      artistNames(t.Artists),
		Album:       album.Name,
		AlbumID:     optional(album.ID),
		Artwork:     pickArtwork(album.Images),
		SpotifyURL:  t.ExternalURLs["spotify"],
		URI:         t.URI,
		Popularity:  t.Popularity,
		Explicit:    t.Explicit,
		ReleaseDate: optional(album.ReleaseDate),
	}

	if len(t.Artists) > 0 {
		v.ArtistID = optional(t.Artists[0].ID)
	}
	if t.DurationMs > 0 {
		v.Duration = t.DurationMs / 1000
	}

	// The 30 second preview is the only playable URL the catalog exposes.
	if t.PreviewURL != nil && *t.PreviewURL != "" {
		v.ResolvedStreamURL = optional(*t.PreviewURL)
		v.PreviewURL = optional(*t.PreviewURL)
	}

	return v
}

// MapTracks normalizes tracks, dropping nils. The result is never nil.
func MapTracks(tracks []*Track) []*TrackView {
	views := make([]*TrackView, 0, len(tracks))
	for _, t := range tracks {
		if v := MapTrack(t); v != nil {
			views = append(views, v)
		}
	}
	return views
}

// TracksFromNewReleases flattens the tracks of the first ten albums,
// attaching each album to its tracks before normalizing.
func TracksFromNewReleases(albums []Album) []*TrackView {
	views := make([]*TrackView, 0)
	for i := range albums[:min(len(albums), maxReleaseAlbums)] {
		album := albums[i]
		if album.Tracks == nil {
			continue
		}
		for _, t := range album.Tracks.Items {
			t.Album = &album
			views = append(views, MapTrack(&t))
		}
	}
	return views
}

func artistNames(artists []SimpleArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	if joined := strings.Join(names, ", "); joined != "" {
		return joined
	}
	return UnknownArtist
}

// pickArtwork chooses, for each size, the first image at least that tall.
// When nothing qualifies it falls back to a fixed index (2, 1, 0 for
// 150, 300, 500). The catalog does not guarantee image order, so the
// fallback can pick an image of any size.
func pickArtwork(images []Image) Artwork {
	return Artwork{
		Small:    imageFor(images, 150, 2),
		Medium:   imageFor(images, 300, 1),
		Large:    imageFor(images, 500, 0),
		Original: imageAt(images, 0),
	}
}

func imageFor(images []Image, minHeight, fallback int) string {
	for _, img := range images {
		if img.Height != nil && *img.Height >= minHeight {
			if img.URL != "" {
				return img.URL
			}
			break
		}
	}
	return imageAt(images, fallback)
}

func imageAt(images []Image, i int) string {
	if i < len(images) {
		return images[i].URL
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
