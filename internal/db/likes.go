package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository handles liked-track database operations.
type LikeRepository struct {
	pool *pgxpool.Pool
}

// List retrieves a user's liked tracks, most recently liked first.
func (r *LikeRepository) List(ctx context.Context, userID string) ([]LikedTrack, error) {
	query := `
		SELECT user_id, track_id, track, liked_at
		FROM liked_tracks
		WHERE user_id = $1
		ORDER BY liked_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying liked tracks: %w", err)
	}

	likes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LikedTrack, error) {
		var l LikedTrack
		err := row.Scan(&l.UserID, &l.TrackID, &l.Track, &l.LikedAt)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning liked tracks: %w", err)
	}
	return likes, nil
}

// Exists reports whether the user has liked the track.
func (r *LikeRepository) Exists(ctx context.Context, userID, trackID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM liked_tracks WHERE user_id = $1 AND track_id = $2
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, trackID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking liked track: %w", err)
	}
	return exists, nil
}

// Upsert stores a liked track, replacing the stored document and time if
// it was already liked.
func (r *LikeRepository) Upsert(ctx context.Context, l *LikedTrack) error {
	query := `
		INSERT INTO liked_tracks (user_id, track_id, track, liked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, track_id) DO UPDATE SET
			track = EXCLUDED.track,
			liked_at = EXCLUDED.liked_at
	`
	_, err := r.pool.Exec(ctx, query, l.UserID, l.TrackID, l.Track, l.LikedAt)
	if err != nil {
		return fmt.Errorf("upserting liked track: %w", err)
	}
	return nil
}

// Delete removes a liked track. Returns ErrNotFound if it was not liked.
func (r *LikeRepository) Delete(ctx context.Context, userID, trackID string) error {
	query := `DELETE FROM liked_tracks WHERE user_id = $1 AND track_id = $2`
	result, err := r.pool.Exec(ctx, query, userID, trackID)
	if err != nil {
		return fmt.Errorf("deleting liked track: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
