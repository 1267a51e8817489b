package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/normalize"
	"github.com/stagedoor/backend/internal/scoring"
	"github.com/stagedoor/backend/internal/utils"
)

const (
	bandPayloadKey = "bands:payload"
	refreshGateKey = "bands:refresh_gate"
	lastRefreshKey = "bands:last_refresh"
)

var ErrRefreshTooSoon = errors.New("band refresh already requested")

// RefreshTooSoonError carries how long the caller has to wait.
type RefreshTooSoonError struct {
	RetryAfter time.Duration
}

func (e *RefreshTooSoonError) Error() string {
	return fmt.Sprintf("band refresh already requested, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RefreshTooSoonError) Unwrap() error { return ErrRefreshTooSoon }

// BandSource is the remote system of record for band rows.
type BandSource interface {
	FetchBands(ctx context.Context) ([]byte, error)
	TriggerRefresh(ctx context.Context, lastRefresh time.Time) error
}

type BandService struct {
	source   BandSource
	cache    cache.Store
	profiles scoring.Profiles
	cfg      *config.Config
	now      func() time.Time
}

func NewBandService(source BandSource, store cache.Store, profiles scoring.Profiles, cfg *config.Config) *BandService {
	return &BandService{
		source:   source,
		cache:    store,
		profiles: profiles,
		cfg:      cfg,
		now:      time.Now,
	}
}

// BandQuery is one list request.
type BandQuery struct {
	Focus  scoring.ProfileKey
	View   string
	Sort   scoring.SortKey
	Filter scoring.Filter
	Limit  int
}

// BandList is a ranked view plus the size of every view.
type BandList struct {
	Bands  []models.Band      `json:"data"`
	Counts map[string]int     `json:"counts"`
	Focus  scoring.ProfileKey `json:"focus"`
}

// Bands returns the normalized band list, served from cache when fresh.
func (s *BandService) Bands(ctx context.Context) ([]models.Band, error) {
	payload, err := s.cache.Get(ctx, bandPayloadKey)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			utils.Log.WithError(err).Warn("band cache unavailable, fetching directly")
		}
		payload, err = s.source.FetchBands(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch bands: %w", err)
		}
		if err := s.cache.Set(ctx, bandPayloadKey, payload, s.cfg.BandCacheTTL); err != nil {
			utils.Log.WithError(err).Warn("failed to cache band payload")
		}
	}
	return normalize.Bands(payload), nil
}

// List partitions, then ranks the requested view.
func (s *BandService) List(ctx context.Context, q BandQuery) (*BandList, error) {
	bands, err := s.Bands(ctx)
	if err != nil {
		return nil, err
	}
	views := normalize.Partition(bands)
	ranked := s.profiles.Rank(views.View(q.View), scoring.RankOptions{
		Focus:  q.Focus,
		Sort:   q.Sort,
		Filter: q.Filter,
		Limit:  q.Limit,
	})
	return &BandList{
		Bands: ranked,
		Counts: map[string]int{
			"discovery": len(views.Discovery),
			"history":   len(views.History),
			"rejected":  len(views.Rejected),
		},
		Focus: q.Focus,
	}, nil
}

// Recommend picks the top n discovery bands under focus.
func (s *BandService) Recommend(ctx context.Context, focus scoring.ProfileKey, n int) ([]models.Band, error) {
	bands, err := s.Bands(ctx)
	if err != nil {
		return nil, err
	}
	return s.profiles.Recommend(normalize.Partition(bands).Discovery, focus, n), nil
}

func (s *BandService) Profiles() []scoring.Profile {
	return s.profiles.List()
}

// Refresh asks the platform for a new scrape at most once per gate window.
// The cached payload is dropped so the next read sees the new rows.
func (s *BandService) Refresh(ctx context.Context) error {
	stamp := []byte(strconv.FormatInt(s.now().Unix(), 10))
	ok, err := s.cache.SetNX(ctx, refreshGateKey, stamp, s.cfg.RefreshGate)
	if err != nil {
		return fmt.Errorf("failed to check refresh gate: %w", err)
	}
	if !ok {
		ttl, _ := s.cache.TTL(ctx, refreshGateKey)
		return &RefreshTooSoonError{RetryAfter: ttl}
	}

	var last time.Time
	if raw, err := s.cache.Get(ctx, lastRefreshKey); err == nil {
		if sec, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			last = time.Unix(sec, 0)
		}
	}

	if err := s.source.TriggerRefresh(ctx, last); err != nil {
		// Nothing was started, so let the next click through.
		if derr := s.cache.Del(ctx, refreshGateKey); derr != nil {
			utils.Log.WithError(derr).Warn("failed to release refresh gate")
		}
		return fmt.Errorf("failed to trigger refresh: %w", err)
	}

	if err := s.cache.Set(ctx, lastRefreshKey, stamp, 0); err != nil {
		utils.Log.WithError(err).Warn("failed to record last refresh")
	}
	if err := s.cache.Del(ctx, bandPayloadKey); err != nil {
		utils.Log.WithError(err).Warn("failed to invalidate band cache")
	}
	utils.Log.Info("Band refresh triggered")
	return nil
}
