package db

import "time"

type Game struct {
	ID            uint      `gorm:"primaryKey"`
	BggID         int       `gorm:"uniqueIndex;not null"`
	PrimaryName   string    `gorm:"size:255;not null"`
	JapaneseName  *string   `gorm:"size:255"`
	YearReleased  *int
	ImageURL      *string   `gorm:"type:text"`
	AvgRating     *float64  `gorm:"type:numeric(3,2);index:idx_games_rating"`
	RatingsCount  *int
	CommentsCount *int
	MinPlayers    *int      `gorm:"index:idx_games_players"`
	MaxPlayers    *int      `gorm:"index:idx_games_players"`
	MinPlaytime   *int
	MaxPlaytime   *int
	MinAge        *int
	Weight        *float64  `gorm:"type:numeric(3,2)"`
	RankOverall   *int      `gorm:"index:idx_games_rank"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	Designers        []GameDesigner        `gorm:"constraint:OnDelete:CASCADE"`
	Artists          []GameArtist          `gorm:"constraint:OnDelete:CASCADE"`
	Publishers       []GamePublisher       `gorm:"constraint:OnDelete:CASCADE"`
	Mechanics        []GameMechanic        `gorm:"constraint:OnDelete:CASCADE"`
	Categories       []GameCategory        `gorm:"constraint:OnDelete:CASCADE"`
	Awards           []GameAward           `gorm:"constraint:OnDelete:CASCADE"`
	GenreRanks       []GameGenreRank       `gorm:"constraint:OnDelete:CASCADE"`
	BestPlayerCounts []GameBestPlayerCount `gorm:"constraint:OnDelete:CASCADE"`
}
