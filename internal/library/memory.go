package library

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/justestif/go-music-browser/internal/spotify"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store. State is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	profiles map[string]Profile
	likes    map[string]map[string]LikedTrack
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		profiles: make(map[string]Profile),
		likes:    make(map[string]map[string]LikedTrack),
	}
}

func (s *MemoryStore) Profile(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, userID string, update ProfileUpdate) (*Profile, error) {
	update = update.trimmed()

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profiles[userID]
	if update.FullName != nil {
		p.FullName = *update.FullName
	}
	if update.Bio != nil {
		p.Bio = *update.Bio
	}
	if update.ProfilePictureURL != nil {
		p.ProfilePictureURL = *update.ProfilePictureURL
	}
	p.UpdatedAt = s.now()
	s.profiles[userID] = p

	return &p, nil
}

func (s *MemoryStore) LikedTracks(_ context.Context, userID string) ([]LikedTrack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LikedTrack, 0, len(s.likes[userID]))
	for _, l := range s.likes[userID] {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b LikedTrack) int {
		if c := b.LikedAt.Compare(a.LikedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) IsLiked(_ context.Context, userID, trackID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.likes[userID][trackID]
	return ok, nil
}

func (s *MemoryStore) Like(_ context.Context, userID string, track *spotify.TrackView, likedAt time.Time) (LikedTrack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.likes[userID] == nil {
		s.likes[userID] = make(map[string]LikedTrack)
	}
	l := LikedTrack{TrackView: track, LikedAt: likedAt}
	s.likes[userID][track.ID] = l
	return l, nil
}

func (s *MemoryStore) Unlike(_ context.Context, userID, trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.likes[userID], trackID)
	return nil
}
