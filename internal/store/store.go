// Package store holds the DJ song collections behind a repository interface
// so handlers never touch process-wide state.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/stagedoor/backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

// SongStore persists requests, cooldowns and the blacklist. Song keys are
// the canonical slug from pkg/slug.
type SongStore interface {
	ListRequests(ctx context.Context) ([]models.SongRequest, error)
	FindRequest(ctx context.Context, songID string) (*models.SongRequest, error)
	CreateRequest(ctx context.Context, req *models.SongRequest) error
	IncrementRequest(ctx context.Context, songID string, by int) (*models.SongRequest, error)
	DeleteRequests(ctx context.Context, songID string) (int64, error)

	ListCooldowns(ctx context.Context) ([]models.CooldownSong, error)
	FindCooldown(ctx context.Context, songID string) (*models.CooldownSong, error)
	UpsertCooldown(ctx context.Context, c *models.CooldownSong) error
	DeleteCooldown(ctx context.Context, songID string) error
	DeleteExpiredCooldowns(ctx context.Context, now time.Time) (int64, error)

	ListBlacklist(ctx context.Context) ([]models.BlacklistedSong, error)
	FindBlacklisted(ctx context.Context, songID string) (*models.BlacklistedSong, error)
	CreateBlacklisted(ctx context.Context, b *models.BlacklistedSong) error
	DeleteBlacklisted(ctx context.Context, songID string) error
}
