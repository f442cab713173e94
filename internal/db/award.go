package db

import "time"

// Award is a shared award definition. The same name/year/type/category
// combination earned by several games is stored once and linked per game.
type Award struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_awards_definition"`
	Year      int       `gorm:"not null;uniqueIndex:idx_awards_definition"`
	Type      string    `gorm:"size:20;not null;uniqueIndex:idx_awards_definition"`
	Category  string    `gorm:"size:255;not null;default:'';uniqueIndex:idx_awards_definition"`
	BggURL    *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`

	Games []GameAward `gorm:"constraint:OnDelete:CASCADE"`
}
