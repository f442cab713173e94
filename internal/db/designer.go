package db

import "time"

type Designer struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`

	Games []GameDesigner `gorm:"constraint:OnDelete:CASCADE"`
}
