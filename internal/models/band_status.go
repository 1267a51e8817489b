package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BandStatusChange records every band status webhook we forwarded and whether
// the automation platform accepted it.
type BandStatusChange struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BandID    string    `gorm:"size:255;not null;index" json:"bandId"`
	BandName  string    `gorm:"size:255" json:"bandName"`
	Action    string    `gorm:"type:varchar(50);not null" json:"action"` // "Yes" | "Band Removed"
	Payload   string    `gorm:"type:text" json:"payload,omitempty"`     // JSON string
	Delivered bool      `gorm:"default:false" json:"delivered"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for BandStatusChange
func (BandStatusChange) TableName() string {
	return "band_status_changes"
}

func (b *BandStatusChange) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
