package db

import "time"

// Profile is the editable profile a user keeps alongside their catalog account.
type Profile struct {
	UserID            string
	FullName          *string // nullable
	Bio               *string // nullable
	ProfilePictureURL *string // nullable
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LikedTrack is a track a user liked, stored as its normalized JSON document.
type LikedTrack struct {
	UserID  string
	TrackID string
	Track   []byte // jsonb
	LikedAt time.Time
}
