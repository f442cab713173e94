package db

import "time"

// TargetGame is a manually queued bgg_id that every crawl run picks up in
// addition to the ranking pages.
type TargetGame struct {
	ID        uint      `gorm:"primaryKey"`
	BggID     int       `gorm:"uniqueIndex;not null"`
	Note      *string   `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
}
