package db

import "time"

type GameGenreRank struct {
	ID          uint      `gorm:"primaryKey"`
	GameID      uint      `gorm:"index;not null;uniqueIndex:idx_genre_ranks_game_genre"`
	GenreID     uint      `gorm:"index;not null;uniqueIndex:idx_genre_ranks_game_genre"`
	RankInGenre *int      `gorm:"index:idx_genre_ranks_rank"`
	CreatedAt   time.Time `gorm:"not null"`
}
