package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles profile database operations.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a profile by user ID.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT user_id, full_name, bio, profile_picture_url, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var p Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FullName,
		&p.Bio,
		&p.ProfilePictureURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// Upsert creates a profile or merges into an existing one. Nil fields keep
// their stored value. The merged row is written back into p.
func (r *ProfileRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (user_id, full_name, bio, profile_picture_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
			bio = COALESCE(EXCLUDED.bio, profiles.bio),
			profile_picture_url = COALESCE(EXCLUDED.profile_picture_url, profiles.profile_picture_url),
			updated_at = NOW()
		RETURNING full_name, bio, profile_picture_url, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.UserID,
		p.FullName,
		p.Bio,
		p.ProfilePictureURL,
	).Scan(&p.FullName, &p.Bio, &p.ProfilePictureURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
