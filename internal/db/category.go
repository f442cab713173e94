package db

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;uniqueIndex;not null"`
	GameCount int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`

	Games []GameCategory `gorm:"constraint:OnDelete:CASCADE"`
}
