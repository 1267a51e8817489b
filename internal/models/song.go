package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SongRequest is an active listener request waiting for the DJ.
type SongRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SongID       string    `gorm:"size:255;not null;index" json:"songId"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Artist       string    `gorm:"size:255;not null" json:"artist"`
	Venue        string    `gorm:"size:255" json:"venue,omitempty"`
	RequestCount int       `gorm:"default:1" json:"requestCount"`
	RequestedAt  time.Time `json:"requestedAt"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (r *SongRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CooldownSong is a song that was just played and may not be played again
// before CooldownUntil.
type CooldownSong struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SongID        string    `gorm:"size:255;not null;uniqueIndex" json:"songId"`
	Title         string    `gorm:"size:255" json:"title"`
	Artist        string    `gorm:"size:255" json:"artist"`
	PlayedAt      time.Time `json:"playedAt"`
	CooldownUntil time.Time `gorm:"not null;index" json:"cooldownUntil"`
}

func (c *CooldownSong) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Active reports whether the cooldown still blocks the song at now.
func (c *CooldownSong) Active(now time.Time) bool {
	return now.Before(c.CooldownUntil)
}

// BlacklistedSong is banned until someone removes it explicitly.
type BlacklistedSong struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SongID    string    `gorm:"size:255;not null;uniqueIndex" json:"songId"`
	Title     string    `gorm:"size:255" json:"title"`
	Artist    string    `gorm:"size:255" json:"artist"`
	CreatedAt time.Time `json:"createdAt"`
}

func (b *BlacklistedSong) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DJStats summarises the queue for the dashboard.
type DJStats struct {
	TotalRequests   int `json:"totalRequests"`
	UniqueSongs     int `json:"uniqueSongs"`
	ActiveCooldowns int `json:"activeCooldowns"`
	Blacklisted     int `json:"blacklisted"`
}

// DJSnapshot is the unified payload behind GET /dj/requests.
type DJSnapshot struct {
	AvailableRequests []SongRequest     `json:"availableRequests"`
	Blacklist         []BlacklistedSong `json:"blacklist"`
	ActiveCooldown    []CooldownSong    `json:"activeCooldown"`
	Stats             DJStats           `json:"stats"`
}
