package db

// Link rows between games and shared entities. Each pair is the primary key;
// a row exists iff the most recent ingestion of the game included the entity.

type GameDesigner struct {
	GameID     uint `gorm:"primaryKey"`
	DesignerID uint `gorm:"primaryKey"`
	IsSolo     bool `gorm:"not null;default:false"`
}

type GameArtist struct {
	GameID   uint `gorm:"primaryKey"`
	ArtistID uint `gorm:"primaryKey"`
}

type GamePublisher struct {
	GameID      uint `gorm:"primaryKey"`
	PublisherID uint `gorm:"primaryKey"`
}

type GameMechanic struct {
	GameID     uint `gorm:"primaryKey"`
	MechanicID uint `gorm:"primaryKey"`
}

type GameCategory struct {
	GameID     uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}

type GameAward struct {
	GameID  uint `gorm:"primaryKey"`
	AwardID uint `gorm:"primaryKey"`
}
