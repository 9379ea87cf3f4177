package spotify

// Wire types for the subset of the catalog API the gateway reads. Fields the
// service never uses are left out.

// Image is one artwork variant. Height and Width are null for some
// user-generated playlists.
type Image struct {
	URL    string `json:"url"`
	Height *int   `json:"height"`
	Width  *int   `json:"width"`
}

// SimpleArtist is the artist reference embedded in tracks and albums.
type SimpleArtist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type,omitempty"`
	URI          string            `json:"uri"`
	Href         string            `json:"href,omitempty"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// Artist is a full artist object as returned by search and top-artists.
// Top artists are passed through to clients in this shape.
type Artist struct {
	SimpleArtist
	Genres     []string  `json:"genres"`
	Images     []Image   `json:"images"`
	Popularity int       `json:"popularity"`
	Followers  Followers `json:"followers"`
}

// Followers is the follower summary on an artist.
type Followers struct {
	Total int `json:"total"`
}

// Album is an album object. Tracks is only present on new-release and
// album lookups.
type Album struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	AlbumType    string            `json:"album_type"`
	ReleaseDate  string            `json:"release_date"`
	URI          string            `json:"uri"`
	TotalTracks  int               `json:"total_tracks"`
	Artists      []SimpleArtist    `json:"artists"`
	Images       []Image           `json:"images"`
	ExternalURLs map[string]string `json:"external_urls"`
	Tracks       *Paging[Track]    `json:"tracks"`
}

// Track is a track object. Album is absent on album-embedded tracks.
type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []SimpleArtist    `json:"artists"`
	Album        *Album            `json:"album"`
	DurationMs   int               `json:"duration_ms"`
	PreviewURL   *string           `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
	Popularity   int               `json:"popularity"`
	Explicit     bool              `json:"explicit"`
	TrackNumber  int               `json:"track_number"`
}

// Playlist is a simplified playlist object.
type Playlist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Images       []Image           `json:"images"`
	URI          string            `json:"uri"`
	ExternalURLs map[string]string `json:"external_urls"`
	Owner        struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

// Paging is the standard offset-paged collection envelope.
type Paging[T any] struct {
	Href   string  `json:"href"`
	Items  []T     `json:"items"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Total  int     `json:"total"`
	Next   *string `json:"next"`
}

// NewReleasesResponse is the body of /browse/new-releases.
type NewReleasesResponse struct {
	Albums Paging[Album] `json:"albums"`
}

// FeaturedPlaylistsResponse is the body of /browse/featured-playlists.
// Items may contain nulls.
type FeaturedPlaylistsResponse struct {
	Message   string            `json:"message"`
	Playlists Paging[*Playlist] `json:"playlists"`
}

// SearchResponse is the body of /search. Each collection is absent when
// its type was not requested.
type SearchResponse struct {
	Tracks  *Paging[Track]  `json:"tracks"`
	Artists *Paging[Artist] `json:"artists"`
	Albums  *Paging[Album]  `json:"albums"`
}

// SavedTrack is an item of /me/tracks.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// PlayHistory is an item of /me/player/recently-played.
type PlayHistory struct {
	PlayedAt string `json:"played_at"`
	Track    *Track `json:"track"`
}

// User is the current user's profile from /me.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Country     string  `json:"country"`
	Product     string  `json:"product"`
	Images      []Image `json:"images"`
}
