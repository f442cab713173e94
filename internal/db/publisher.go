package db

import "time"

type Publisher struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`

	Games []GamePublisher `gorm:"constraint:OnDelete:CASCADE"`
}
