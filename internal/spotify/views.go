package spotify

// AlbumSummary is the album shape used by search results.
type AlbumSummary struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Images []Image `json:"images"`
}

// AlbumCard is the album card shape on the home feed.
type AlbumCard struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Artwork []Image `json:"artwork"`
}

// PlaylistCard is the playlist card shape on the home feed.
type PlaylistCard struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Artwork []Image `json:"artwork"`
}

// ArtistView is the artist shape used by search results.
type ArtistView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Followers  int      `json:"followers"`
	Images     []Image  `json:"images"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// MapAlbumSummary summarizes an album, crediting its first artist.
func MapAlbumSummary(a Album) AlbumSummary {
	s := AlbumSummary{
		ID:     a.ID,
		Title:  a.Name,
		Images: nonNil(a.Images),
	}
	if len(a.Artists) > 0 {
		s.Artist = a.Artists[0].Name
	}
	return s
}

// MapAlbumSummaries summarizes each album. The result is never nil.
func MapAlbumSummaries(albums []Album) []AlbumSummary {
	out := make([]AlbumSummary, len(albums))
	for i, a := range albums {
		out[i] = MapAlbumSummary(a)
	}
	return out
}

// MapAlbumCards builds home feed cards. The result is never nil.
func MapAlbumCards(albums []Album) []AlbumCard {
	out := make([]AlbumCard, len(albums))
	for i, a := range albums {
		s := MapAlbumSummary(a)
		out[i] = AlbumCard{ID: s.ID, Title: s.Title, Artist: s.Artist, Artwork: s.Images}
	}
	return out
}

// MapPlaylistCards builds home feed cards, skipping null entries.
func MapPlaylistCards(playlists []*Playlist) []PlaylistCard {
	out := make([]PlaylistCard, 0, len(playlists))
	for _, p := range playlists {
		if p == nil {
			continue
		}
		out = append(out, PlaylistCard{
			ID:      p.ID,
			Title:   p.Name,
			Artwork: nonNil(p.Images),
		})
	}
	return out
}

// MapArtist converts a catalog artist.
func MapArtist(a Artist) ArtistView {
	return ArtistView{
		ID:         a.ID,
		Name:       a.Name,
		Followers:  a.Followers.Total,
		Images:     nonNil(a.Images),
		Genres:     nonNil(a.Genres),
		Popularity: a.Popularity,
	}
}

// MapArtists converts each artist. The result is never nil.
func MapArtists(artists []Artist) []ArtistView {
	out := make([]ArtistView, len(artists))
	for i, a := range artists {
		out[i] = MapArtist(a)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
