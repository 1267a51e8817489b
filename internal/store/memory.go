package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stagedoor/backend/internal/models"
)

// MemorySongStore keeps everything in process. Used by tests and by the API
// when no database is configured.
type MemorySongStore struct {
	mu        sync.RWMutex
	requests  []models.SongRequest
	cooldowns map[string]models.CooldownSong
	blacklist []models.BlacklistedSong
	now       func() time.Time
}

func NewMemorySongStore() *MemorySongStore {
	return &MemorySongStore{
		cooldowns: make(map[string]models.CooldownSong),
		now:       time.Now,
	}
}

func (s *MemorySongStore) ListRequests(ctx context.Context) ([]models.SongRequest, error) {
	s.mu.RLock()
	out := append([]models.SongRequest(nil), s.requests...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequestCount != out[j].RequestCount {
			return out[i].RequestCount > out[j].RequestCount
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}

func (s *MemorySongStore) FindRequest(ctx context.Context, songID string) (*models.SongRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.SongID == songID {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemorySongStore) CreateRequest(ctx context.Context, req *models.SongRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.RequestCount == 0 {
		req.RequestCount = 1
	}
	now := s.now()
	req.CreatedAt, req.UpdatedAt = now, now

	s.mu.Lock()
	s.requests = append(s.requests, *req)
	s.mu.Unlock()
	return nil
}

func (s *MemorySongStore) IncrementRequest(ctx context.Context, songID string, by int) (*models.SongRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		if s.requests[i].SongID == songID {
			s.requests[i].RequestCount += by
			s.requests[i].UpdatedAt = s.now()
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemorySongStore) DeleteRequests(ctx context.Context, songID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.requests[:0]
	var n int64
	for _, r := range s.requests {
		if r.SongID == songID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.requests = kept
	return n, nil
}

func (s *MemorySongStore) ListCooldowns(ctx context.Context) ([]models.CooldownSong, error) {
	s.mu.RLock()
	out := make([]models.CooldownSong, 0, len(s.cooldowns))
	for _, c := range s.cooldowns {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CooldownUntil.Equal(out[j].CooldownUntil) {
			return out[i].SongID < out[j].SongID
		}
		return out[i].CooldownUntil.Before(out[j].CooldownUntil)
	})
	return out, nil
}

func (s *MemorySongStore) FindCooldown(ctx context.Context, songID string) (*models.CooldownSong, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cooldowns[songID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemorySongStore) UpsertCooldown(ctx context.Context, c *models.CooldownSong) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.cooldowns[c.SongID]; ok {
		c.ID = prev.ID
	} else if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.cooldowns[c.SongID] = *c
	return nil
}

func (s *MemorySongStore) DeleteCooldown(ctx context.Context, songID string) error {
	s.mu.Lock()
	delete(s.cooldowns, songID)
	s.mu.Unlock()
	return nil
}

func (s *MemorySongStore) DeleteExpiredCooldowns(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.cooldowns {
		if !c.Active(now) {
			delete(s.cooldowns, id)
			n++
		}
	}
	return n, nil
}

func (s *MemorySongStore) ListBlacklist(ctx context.Context) ([]models.BlacklistedSong, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.BlacklistedSong(nil), s.blacklist...), nil
}

func (s *MemorySongStore) FindBlacklisted(ctx context.Context, songID string) (*models.BlacklistedSong, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.blacklist {
		if b.SongID == songID {
			b := b
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

// CreateBlacklisted is a no-op when the song is already blacklisted.
func (s *MemorySongStore) CreateBlacklisted(ctx context.Context, b *models.BlacklistedSong) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.blacklist {
		if existing.SongID == b.SongID {
			return nil
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	s.blacklist = append(s.blacklist, *b)
	return nil
}

func (s *MemorySongStore) DeleteBlacklisted(ctx context.Context, songID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.blacklist {
		if b.SongID == songID {
			s.blacklist = append(s.blacklist[:i], s.blacklist[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
