package db

import "time"

type GameBestPlayerCount struct {
	ID          uint      `gorm:"primaryKey"`
	GameID      uint      `gorm:"index;not null;uniqueIndex:idx_best_players_game_count"`
	PlayerCount int       `gorm:"not null;index;uniqueIndex:idx_best_players_game_count"`
	CreatedAt   time.Time `gorm:"not null"`
}
