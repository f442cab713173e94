package db

import (
	"time"

	"gorm.io/datatypes"
)

// CrawlProgress records the outcome of one crawl batch.
type CrawlProgress struct {
	ID             uint           `gorm:"primaryKey"`
	BatchID        string         `gorm:"size:64;uniqueIndex;not null"`
	BatchType      string         `gorm:"size:16;not null"`
	TotalGames     int            `gorm:"not null;default:0"`
	ProcessedGames int            `gorm:"not null;default:0"`
	FailedGames    int            `gorm:"not null;default:0"`
	FailedIDs      datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage   *string        `gorm:"type:text"`
	StartedAt      time.Time      `gorm:"not null"`
	CompletedAt    *time.Time
}
