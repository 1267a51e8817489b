package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/pkg/slug"
)

const DefaultCooldown = 2 * time.Hour

// Remote is the API as seen by the console.
type Remote interface {
	Fetch(ctx context.Context) (models.DJSnapshot, error)
	PlaySong(ctx context.Context, c models.CooldownSong) error
	Blacklist(ctx context.Context, b models.BlacklistedSong) error
	Unblacklist(ctx context.Context, songID string) error
}

type Queue struct {
	Executor

	remote   Remote
	cooldown time.Duration
	now      func() time.Time
}

func New(remote Remote, cooldown time.Duration) *Queue {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Queue{remote: remote, cooldown: cooldown, now: time.Now}
}

// Load replaces local state with the server's.
func (q *Queue) Load(ctx context.Context) error {
	snap, err := q.remote.Fetch(ctx)
	if err != nil {
		q.Fail(fmt.Errorf("load requests: %w", err))
		return err
	}
	q.Replace(State{
		Requests:  snap.AvailableRequests,
		Cooldown:  snap.ActiveCooldown,
		Blacklist: snap.Blacklist,
	})
	return nil
}

func insertAt[T any](list []T, i int, v T) []T {
	if i < 0 || i > len(list) {
		i = len(list)
	}
	list = append(list, v)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

func removeAt[T any](list []T, i int) []T {
	return append(list[:i], list[i+1:]...)
}

func indexOf[T any](list []T, match func(T) bool) int {
	for i, v := range list {
		if match(v) {
			return i
		}
	}
	return -1
}

// PlaySong moves a request into cooldown.
func (q *Queue) PlaySong(ctx context.Context, requestID string) error {
	var (
		req   models.SongRequest
		pos   int
		entry models.CooldownSong
	)

	return q.Execute(ctx, Command{
		Name: "play song",
		Forward: func(s *State) error {
			pos = indexOf(s.Requests, func(r models.SongRequest) bool {
				return r.ID.String() == requestID || r.SongID == requestID
			})
			if pos < 0 {
				return ErrRequestNotFound
			}
			req = s.Requests[pos]
			now := q.now()
			entry = models.CooldownSong{
				ID:            uuid.New(),
				SongID:        req.SongID,
				Title:         req.Title,
				Artist:        req.Artist,
				PlayedAt:      now,
				CooldownUntil: now.Add(q.cooldown),
			}
			s.Requests = removeAt(s.Requests, pos)
			s.Cooldown = append(s.Cooldown, entry)
			return nil
		},
		Inverse: func(s *State) {
			if i := indexOf(s.Cooldown, func(c models.CooldownSong) bool { return c.ID == entry.ID }); i >= 0 {
				s.Cooldown = removeAt(s.Cooldown, i)
			}
			if indexOf(s.Requests, func(r models.SongRequest) bool { return r.ID == req.ID }) < 0 {
				s.Requests = insertAt(s.Requests, pos, req)
			}
		},
		Remote: func(ctx context.Context) error {
			return q.remote.PlaySong(ctx, entry)
		},
	})
}

// AddToBlacklist bans a song by title and artist. Already banned songs are
// left alone.
func (q *Queue) AddToBlacklist(ctx context.Context, title, artist string) error {
	songID := slug.SongID(artist, title)
	var (
		entry   models.BlacklistedSong
		removed *models.SongRequest
		pos     int
	)

	return q.Execute(ctx, Command{
		Name: "blacklist song",
		Forward: func(s *State) error {
			if indexOf(s.Blacklist, func(b models.BlacklistedSong) bool { return b.SongID == songID }) >= 0 {
				return errNoop
			}
			pos = indexOf(s.Requests, func(r models.SongRequest) bool {
				return r.SongID == songID ||
					strings.EqualFold(r.Title, title) && strings.EqualFold(r.Artist, artist)
			})
			if pos >= 0 {
				r := s.Requests[pos]
				removed = &r
				s.Requests = removeAt(s.Requests, pos)
			}
			entry = models.BlacklistedSong{
				ID:        uuid.New(),
				SongID:    songID,
				Title:     strings.TrimSpace(title),
				Artist:    strings.TrimSpace(artist),
				CreatedAt: q.now(),
			}
			s.Blacklist = append(s.Blacklist, entry)
			return nil
		},
		Inverse: func(s *State) {
			if i := indexOf(s.Blacklist, func(b models.BlacklistedSong) bool { return b.ID == entry.ID }); i >= 0 {
				s.Blacklist = removeAt(s.Blacklist, i)
			}
			if removed != nil && indexOf(s.Requests, func(r models.SongRequest) bool { return r.ID == removed.ID }) < 0 {
				s.Requests = insertAt(s.Requests, pos, *removed)
			}
		},
		Remote: func(ctx context.Context) error {
			return q.remote.Blacklist(ctx, entry)
		},
	})
}

// RemoveFromBlacklist lifts a ban by entry id or song id.
func (q *Queue) RemoveFromBlacklist(ctx context.Context, id string) error {
	var (
		entry models.BlacklistedSong
		pos   int
	)

	return q.Execute(ctx, Command{
		Name: "remove from blacklist",
		Forward: func(s *State) error {
			pos = indexOf(s.Blacklist, func(b models.BlacklistedSong) bool {
				return b.ID.String() == id || b.SongID == id
			})
			if pos < 0 {
				return ErrNotBlacklisted
			}
			entry = s.Blacklist[pos]
			s.Blacklist = removeAt(s.Blacklist, pos)
			return nil
		},
		Inverse: func(s *State) {
			if indexOf(s.Blacklist, func(b models.BlacklistedSong) bool { return b.ID == entry.ID }) < 0 {
				s.Blacklist = insertAt(s.Blacklist, pos, entry)
			}
		},
		Remote: func(ctx context.Context) error {
			return q.remote.Unblacklist(ctx, entry.SongID)
		},
	})
}

// PruneCooldowns drops cooldowns that have run out. Local only; the server
// expires its own copy on the next fetch.
func (q *Queue) PruneCooldowns(now time.Time) int {
	n := 0
	q.Update(func(s *State) {
		kept := s.Cooldown[:0]
		for _, c := range s.Cooldown {
			if c.Active(now) {
				kept = append(kept, c)
				continue
			}
			n++
		}
		s.Cooldown = kept
	})
	return n
}
