package db

import "time"

type Genre struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;uniqueIndex;not null"`
	BggURL    *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`

	GenreRanks []GameGenreRank `gorm:"constraint:OnDelete:CASCADE"`
}
