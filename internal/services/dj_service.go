package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/store"
	"github.com/stagedoor/backend/internal/utils"
	"github.com/stagedoor/backend/pkg/slug"
	"github.com/stagedoor/backend/pkg/validation"
)

var (
	ErrInvalidSong     = errors.New("title and artist are required")
	ErrSongBlacklisted = errors.New("song is blacklisted")
	ErrSongOnCooldown  = errors.New("song was played recently")
	ErrNotBlacklisted  = errors.New("song is not blacklisted")
)

type DJService struct {
	songs store.SongStore
	cfg   *config.Config
	now   func() time.Time
}

func NewDJService(songs store.SongStore, cfg *config.Config) *DJService {
	return &DJService{
		songs: songs,
		cfg:   cfg,
		now:   time.Now,
	}
}

// AddRequestInput is the data block of a requests.add action.
type AddRequestInput struct {
	SongID       string    `json:"songId"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	Venue        string    `json:"venue"`
	Timestamp    time.Time `json:"timestamp"`
	RequestCount int       `json:"requestCount"`
}

type PlaySongInput struct {
	SongID        string    `json:"songId"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	CooldownUntil time.Time `json:"cooldownUntil"`
}

type BlacklistInput struct {
	SongID string `json:"songId"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// songKey returns the canonical key, deriving it from artist and title when
// the caller did not send one.
func songKey(songID, artist, title string) string {
	if id := strings.TrimSpace(songID); id != "" {
		return strings.ToLower(id)
	}
	return slug.SongID(artist, title)
}

// Snapshot drops expired cooldowns, then returns the unified DJ payload.
func (s *DJService) Snapshot(ctx context.Context) (*models.DJSnapshot, error) {
	now := s.now()
	if n, err := s.songs.DeleteExpiredCooldowns(ctx, now); err != nil {
		return nil, fmt.Errorf("failed to expire cooldowns: %w", err)
	} else if n > 0 {
		utils.Log.WithField("count", n).Debug("Expired song cooldowns")
	}

	requests, err := s.songs.ListRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	cooldowns, err := s.songs.ListCooldowns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cooldowns: %w", err)
	}
	blacklist, err := s.songs.ListBlacklist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist: %w", err)
	}

	blocked := make(map[string]bool, len(cooldowns)+len(blacklist))
	active := make([]models.CooldownSong, 0, len(cooldowns))
	for _, c := range cooldowns {
		if c.Active(now) {
			active = append(active, c)
			blocked[c.SongID] = true
		}
	}
	for _, b := range blacklist {
		blocked[b.SongID] = true
	}

	available := make([]models.SongRequest, 0, len(requests))
	total := 0
	for _, r := range requests {
		if blocked[r.SongID] {
			continue
		}
		available = append(available, r)
		total += r.RequestCount
	}
	if blacklist == nil {
		blacklist = []models.BlacklistedSong{}
	}

	return &models.DJSnapshot{
		AvailableRequests: available,
		Blacklist:         blacklist,
		ActiveCooldown:    active,
		Stats: models.DJStats{
			TotalRequests:   total,
			UniqueSongs:     len(available),
			ActiveCooldowns: len(active),
			Blacklisted:     len(blacklist),
		},
	}, nil
}

// AddRequest records a listener request. A second request for the same song
// bumps its count instead of adding a row.
func (s *DJService) AddRequest(ctx context.Context, in AddRequestInput) (*models.SongRequest, error) {
	in.Title = validation.SanitizeString(in.Title)
	in.Artist = validation.SanitizeString(in.Artist)
	if !validation.ValidateSongField(in.Title) || !validation.ValidateSongField(in.Artist) {
		return nil, ErrInvalidSong
	}
	key := songKey(in.SongID, in.Artist, in.Title)
	if !validation.ValidateSongID(key) {
		return nil, fmt.Errorf("%w: bad song id %q", ErrInvalidSong, in.SongID)
	}

	if _, err := s.songs.FindBlacklisted(ctx, key); err == nil {
		return nil, ErrSongBlacklisted
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if c, err := s.songs.FindCooldown(ctx, key); err == nil && c.Active(s.now()) {
		return nil, ErrSongOnCooldown
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	by := in.RequestCount
	if by < 1 {
		by = 1
	}

	if _, err := s.songs.FindRequest(ctx, key); err == nil {
		return s.songs.IncrementRequest(ctx, key, by)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	requestedAt := in.Timestamp
	if requestedAt.IsZero() {
		requestedAt = s.now()
	}
	venue := in.Venue
	if venue == "" {
		venue = s.cfg.Venue
	}
	req := &models.SongRequest{
		SongID:       key,
		Title:        in.Title,
		Artist:       in.Artist,
		Venue:        venue,
		RequestCount: by,
		RequestedAt:  requestedAt.UTC(),
	}
	if err := s.songs.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	utils.Log.WithFields(logrus.Fields{
		"song_id": key,
		"venue":   venue,
	}).Info("Song requested")
	return req, nil
}

// PlaySong clears the song's requests and starts its cooldown. Blacklisted
// songs are rejected.
func (s *DJService) PlaySong(ctx context.Context, in PlaySongInput) (*models.CooldownSong, error) {
	key := songKey(in.SongID, in.Artist, in.Title)
	if !validation.ValidateSongID(key) {
		return nil, ErrInvalidSong
	}
	if _, err := s.songs.FindBlacklisted(ctx, key); err == nil {
		return nil, ErrSongBlacklisted
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	until := in.CooldownUntil
	if until.IsZero() || !until.After(now) {
		until = now.Add(s.cfg.CooldownDuration)
	}

	title, artist := in.Title, in.Artist
	if title == "" || artist == "" {
		if r, err := s.songs.FindRequest(ctx, key); err == nil {
			title, artist = r.Title, r.Artist
		}
	}

	if _, err := s.songs.DeleteRequests(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to clear requests: %w", err)
	}
	cooldown := &models.CooldownSong{
		SongID:        key,
		Title:         title,
		Artist:        artist,
		PlayedAt:      now.UTC(),
		CooldownUntil: until.UTC(),
	}
	if err := s.songs.UpsertCooldown(ctx, cooldown); err != nil {
		return nil, fmt.Errorf("failed to start cooldown: %w", err)
	}

	utils.Log.WithFields(logrus.Fields{
		"song_id":        key,
		"cooldown_until": cooldown.CooldownUntil,
	}).Info("Song played")
	return cooldown, nil
}

// Blacklist bans a song. Blacklisting twice is a no-op. Any pending
// requests and cooldown for the song are dropped so it lives in exactly one
// collection.
func (s *DJService) Blacklist(ctx context.Context, in BlacklistInput) (*models.BlacklistedSong, error) {
	key := songKey(in.SongID, in.Artist, in.Title)
	if !validation.ValidateSongID(key) {
		return nil, ErrInvalidSong
	}

	if existing, err := s.songs.FindBlacklisted(ctx, key); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	entry := &models.BlacklistedSong{
		SongID: key,
		Title:  validation.SanitizeString(in.Title),
		Artist: validation.SanitizeString(in.Artist),
	}
	if err := s.songs.CreateBlacklisted(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to blacklist song: %w", err)
	}
	if _, err := s.songs.DeleteRequests(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to clear requests: %w", err)
	}
	if err := s.songs.DeleteCooldown(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to clear cooldown: %w", err)
	}

	utils.Log.WithField("song_id", key).Info("Song blacklisted")
	return entry, nil
}

func (s *DJService) Unblacklist(ctx context.Context, songID string) error {
	key := strings.ToLower(strings.TrimSpace(songID))
	if key == "" {
		return ErrNotBlacklisted
	}
	if err := s.songs.DeleteBlacklisted(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotBlacklisted
		}
		return err
	}
	utils.Log.WithField("song_id", key).Info("Song removed from blacklist")
	return nil
}
