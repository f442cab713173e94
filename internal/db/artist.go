package db

import "time"

type Artist struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`

	Games []GameArtist `gorm:"constraint:OnDelete:CASCADE"`
}
