package store

import (
	"context"
	"errors"
	"time"

	"github.com/stagedoor/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSongStore is the production SongStore (postgres; sqlite works too).
type GormSongStore struct {
	db *gorm.DB
}

func NewGormSongStore(db *gorm.DB) *GormSongStore {
	return &GormSongStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormSongStore) ListRequests(ctx context.Context) ([]models.SongRequest, error) {
	var out []models.SongRequest
	err := s.db.WithContext(ctx).
		Order("request_count DESC").
		Order("requested_at ASC").
		Find(&out).Error
	return out, err
}

func (s *GormSongStore) FindRequest(ctx context.Context, songID string) (*models.SongRequest, error) {
	var req models.SongRequest
	if err := s.db.WithContext(ctx).Where("song_id = ?", songID).First(&req).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (s *GormSongStore) CreateRequest(ctx context.Context, req *models.SongRequest) error {
	return s.db.WithContext(ctx).Create(req).Error
}

// IncrementRequest bumps the request count in a single UPDATE so concurrent
// requests for the same song do not lose counts.
func (s *GormSongStore) IncrementRequest(ctx context.Context, songID string, by int) (*models.SongRequest, error) {
	res := s.db.WithContext(ctx).Model(&models.SongRequest{}).
		Where("song_id = ?", songID).
		Update("request_count", gorm.Expr("request_count + ?", by))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindRequest(ctx, songID)
}

func (s *GormSongStore) DeleteRequests(ctx context.Context, songID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&models.SongRequest{})
	return res.RowsAffected, res.Error
}

func (s *GormSongStore) ListCooldowns(ctx context.Context) ([]models.CooldownSong, error) {
	var out []models.CooldownSong
	err := s.db.WithContext(ctx).Order("cooldown_until ASC").Find(&out).Error
	return out, err
}

func (s *GormSongStore) FindCooldown(ctx context.Context, songID string) (*models.CooldownSong, error) {
	var c models.CooldownSong
	if err := s.db.WithContext(ctx).Where("song_id = ?", songID).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// UpsertCooldown replaces the timing of an existing cooldown for the same
// song instead of failing on the unique key.
func (s *GormSongStore) UpsertCooldown(ctx context.Context, c *models.CooldownSong) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "song_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "artist", "played_at", "cooldown_until"}),
	}).Create(c).Error
}

func (s *GormSongStore) DeleteCooldown(ctx context.Context, songID string) error {
	return s.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&models.CooldownSong{}).Error
}

func (s *GormSongStore) DeleteExpiredCooldowns(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("cooldown_until <= ?", now).Delete(&models.CooldownSong{})
	return res.RowsAffected, res.Error
}

func (s *GormSongStore) ListBlacklist(ctx context.Context) ([]models.BlacklistedSong, error) {
	var out []models.BlacklistedSong
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (s *GormSongStore) FindBlacklisted(ctx context.Context, songID string) (*models.BlacklistedSong, error) {
	var b models.BlacklistedSong
	if err := s.db.WithContext(ctx).Where("song_id = ?", songID).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *GormSongStore) CreateBlacklisted(ctx context.Context, b *models.BlacklistedSong) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

func (s *GormSongStore) DeleteBlacklisted(ctx context.Context, songID string) error {
	res := s.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&models.BlacklistedSong{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
