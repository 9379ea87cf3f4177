// Package library stores per-user state: the editable profile and liked tracks.
package library

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/justestif/go-music-browser/internal/spotify"
)

// ErrNotFound is returned when a user has no stored profile.
var ErrNotFound = errors.New("not found")

// Profile is the user's editable profile.
type Profile struct {
	FullName          string    `json:"fullName"`
	Bio               string    `json:"bio"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial profile. Nil fields are left unchanged.
type ProfileUpdate struct {
	FullName          *string `json:"fullName"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

// trimmed returns a copy with surrounding whitespace removed from set fields.
func (u ProfileUpdate) trimmed() ProfileUpdate {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		t := strings.TrimSpace(*s)
		return &t
	}
	return ProfileUpdate{
		FullName:          trim(u.FullName),
		Bio:               trim(u.Bio),
		ProfilePictureURL: trim(u.ProfilePictureURL),
	}
}

// LikedTrack is a normalized track plus the time it was liked. It encodes
// as the track's fields with a likedAt field added.
type LikedTrack struct {
	*spotify.TrackView
	LikedAt time.Time `json:"likedAt"`
}

// Store persists profiles and liked tracks, keyed by catalog user ID.
type Store interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error)

	LikedTracks(ctx context.Context, userID string) ([]LikedTrack, error)
	IsLiked(ctx context.Context, userID, trackID string) (bool, error)
	// Like stores the track, replacing any earlier like of the same track.
	Like(ctx context.Context, userID string, track *spotify.TrackView, likedAt time.Time) (LikedTrack, error)
	// Unlike removes a like. Unliking a track that is not liked is not an error.
	Unlike(ctx context.Context, userID, trackID string) error
}
