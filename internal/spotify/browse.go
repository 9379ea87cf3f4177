package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
)

const (
	homeLimit   = 20
	searchLimit = 20
)

// HomeSections is the raw home feed. Each section succeeds or fails on its own.
type HomeSections struct {
	NewReleases Result[*NewReleasesResponse]
	Featured    Result[*FeaturedPlaylistsResponse]
}

// HomeSections fetches new releases and featured playlists concurrently and
// waits for both. A failed section is logged and reported in its Result; it
// never cancels or fails the other.
func (g *Gateway) HomeSections(ctx context.Context) HomeSections {
	query := url.Values{
		"limit":  {strconv.Itoa(homeLimit)},
		"market": {g.market},
	}

	var (
		sections HomeSections
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var resp NewReleasesResponse
		err := g.Request(ctx, "/browse/new-releases", RequestOptions{Query: query}, &resp)
		sections.NewReleases = settle(&resp, err)
	}()
	go func() {
		defer wg.Done()
		var resp FeaturedPlaylistsResponse
		err := g.Request(ctx, "/browse/featured-playlists", RequestOptions{Query: query}, &resp)
		sections.Featured = settle(&resp, err)
	}()
	wg.Wait()

	if err := sections.NewReleases.Err; err != nil {
		g.logger.Warn("failed to fetch new releases", "err", err)
	}
	if err := sections.Featured.Err; err != nil {
		g.logger.Warn("failed to fetch featured playlists", "err", err)
	}

	return sections
}

// Search looks up tracks, artists, and albums matching query.
func (g *Gateway) Search(ctx context.Context, query string) (*SearchResponse, error) {
	q := url.Values{
		"q":      {query},
		"type":   {"track,artist,album"},
		"limit":  {strconv.Itoa(searchLimit)},
		"market": {g.market},
	}

	var resp SearchResponse
	if err := g.Request(ctx, "/search", RequestOptions{Query: q}, &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	return &resp, nil
}

// Track fetches a single track in the configured market.
func (g *Gateway) Track(ctx context.Context, id string) (*Track, error) {
	q := url.Values{"market": {g.market}}

	var t Track
	if err := g.Request(ctx, "/tracks/"+url.PathEscape(id), RequestOptions{Query: q}, &t); err != nil {
		return nil, fmt.Errorf("fetching track %s: %w", id, err)
	}
	return &t, nil
}
