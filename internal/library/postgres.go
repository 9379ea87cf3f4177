package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/go-music-browser/internal/db"
	"github.com/justestif/go-music-browser/internal/spotify"
)

var _ Store = (*DBStore)(nil)

// DBStore is a Store backed by PostgreSQL.
type DBStore struct {
	db *db.DB
}

// NewDBStore creates a DBStore. The schema must already be migrated.
func NewDBStore(database *db.DB) *DBStore {
	return &DBStore{db: database}
}

func (s *DBStore) Profile(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.db.Profiles().Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return profileFromRow(p), nil
}

func (s *DBStore) SaveProfile(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error) {
	update = update.trimmed()

	row := &db.Profile{
		UserID:            userID,
		FullName:          update.FullName,
		Bio:               update.Bio,
		ProfilePictureURL: update.ProfilePictureURL,
	}
	if err := s.db.Profiles().Upsert(ctx, row); err != nil {
		return nil, err
	}
	return profileFromRow(row), nil
}

func (s *DBStore) LikedTracks(ctx context.Context, userID string) ([]LikedTrack, error) {
	rows, err := s.db.Likes().List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]LikedTrack, 0, len(rows))
	for _, row := range rows {
		var track spotify.TrackView
		if err := json.Unmarshal(row.Track, &track); err != nil {
			return nil, fmt.Errorf("decoding liked track %s: %w", row.TrackID, err)
		}
		out = append(out, LikedTrack{TrackView: &track, LikedAt: row.LikedAt})
	}
	return out, nil
}

func (s *DBStore) IsLiked(ctx context.Context, userID, trackID string) (bool, error) {
	return s.db.Likes().Exists(ctx, userID, trackID)
}

func (s *DBStore) Like(ctx context.Context, userID string, track *spotify.TrackView, likedAt time.Time) (LikedTrack, error) {
	doc, err := json.Marshal(track)
	if err != nil {
		return LikedTrack{}, fmt.Errorf("encoding track %s: %w", track.ID, err)
	}

	err = s.db.Likes().Upsert(ctx, &db.LikedTrack{
		UserID:  userID,
		TrackID: track.ID,
		Track:   doc,
		LikedAt: likedAt,
	})
	if err != nil {
		return LikedTrack{}, err
	}
	return LikedTrack{TrackView: track, LikedAt: likedAt}, nil
}

func (s *DBStore) Unlike(ctx context.Context, userID, trackID string) error {
	err := s.db.Likes().Delete(ctx, userID, trackID)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	return err
}

func profileFromRow(p *db.Profile) *Profile {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return &Profile{
		FullName:          deref(p.FullName),
		Bio:               deref(p.Bio),
		ProfilePictureURL: deref(p.ProfilePictureURL),
		UpdatedAt:         p.UpdatedAt,
	}
}
