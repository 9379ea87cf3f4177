package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrNoUserToken is returned by delegated reads called without a user token.
var ErrNoUserToken = errors.New("no user token")

// Time ranges accepted by the top-items endpoints.
const (
	ShortTerm  = "short_term"
	MediumTerm = "medium_term"
	LongTerm   = "long_term"
)

// ValidTimeRange reports whether r is a time range the catalog accepts.
func ValidTimeRange(r string) bool {
	switch r {
	case ShortTerm, MediumTerm, LongTerm:
		return true
	}
	return false
}

// The delegated reads below are personalization extras: a failure is logged
// and returned in the Result for the caller to collapse to an empty list.

// UserTopArtists returns the user's top artists as full catalog objects.
func (g *Gateway) UserTopArtists(ctx context.Context, token, timeRange string, limit int) Result[[]Artist] {
	var page Paging[Artist]
	err := g.requestAsUser(ctx, "/me/top/artists", token, url.Values{
		"time_range": {timeRange},
		"limit":      {strconv.Itoa(limit)},
	}, &page)
	if err != nil {
		g.logger.Warn("failed to fetch user top artists", "err", err)
		return Result[[]Artist]{Err: err}
	}
	return Result[[]Artist]{Value: nonNil(page.Items)}
}

// UserTopTracks returns the user's top tracks.
func (g *Gateway) UserTopTracks(ctx context.Context, token, timeRange string, limit int) Result[[]*TrackView] {
	var page Paging[*Track]
	err := g.requestAsUser(ctx, "/me/top/tracks", token, url.Values{
		"time_range": {timeRange},
		"limit":      {strconv.Itoa(limit)},
	}, &page)
	if err != nil {
		g.logger.Warn("failed to fetch user top tracks", "err", err)
		return Result[[]*TrackView]{Err: err}
	}
	return Result[[]*TrackView]{Value: MapTracks(page.Items)}
}

// UserSavedTracks returns the user's liked tracks, most recent first.
func (g *Gateway) UserSavedTracks(ctx context.Context, token string, limit int) Result[[]*TrackView] {
	var page Paging[SavedTrack]
	err := g.requestAsUser(ctx, "/me/tracks", token, url.Values{
		"limit": {strconv.Itoa(limit)},
	}, &page)
	if err != nil {
		g.logger.Warn("failed to fetch user saved tracks", "err", err)
		return Result[[]*TrackView]{Err: err}
	}

	tracks := make([]*Track, len(page.Items))
	for i, item := range page.Items {
		tracks[i] = item.Track
	}
	return Result[[]*TrackView]{Value: MapTracks(tracks)}
}

// UserRecentlyPlayed returns the user's recently played tracks.
func (g *Gateway) UserRecentlyPlayed(ctx context.Context, token string, limit int) Result[[]*TrackView] {
	var page Paging[PlayHistory]
	err := g.requestAsUser(ctx, "/me/player/recently-played", token, url.Values{
		"limit": {strconv.Itoa(limit)},
	}, &page)
	if err != nil {
		g.logger.Warn("failed to fetch user recently played", "err", err)
		return Result[[]*TrackView]{Err: err}
	}

	tracks := make([]*Track, len(page.Items))
	for i, item := range page.Items {
		tracks[i] = item.Track
	}
	return Result[[]*TrackView]{Value: MapTracks(tracks)}
}

// CurrentUser returns the profile behind a delegated token.
func (g *Gateway) CurrentUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := g.requestAsUser(ctx, "/me", token, nil, &u); err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}
	return &u, nil
}

func (g *Gateway) requestAsUser(ctx context.Context, endpoint, token string, query url.Values, out any) error {
	if token == "" {
		return ErrNoUserToken
	}
	return g.Request(ctx, endpoint, RequestOptions{Query: query, BearerToken: token}, out)
}
