// Package ingest turns raw BoardGameGeek game documents into rows of the
// relational catalog and keeps those rows in sync across repeated runs.
package ingest

import "context"

// Document is one raw per-game record as delivered by a Fetcher. Scalar
// fields that the source did not provide are nil; collection fields may
// contain duplicates and junk names, which Normalize cleans up.
type Document struct {
	BggID         int
	PrimaryName   string
	JapaneseName  *string
	YearReleased  *int
	ImageURL      *string
	AvgRating     *float64
	RatingsCount  *int
	CommentsCount *int
	MinPlayers    *int
	MaxPlayers    *int
	MinPlaytime   *int
	MaxPlaytime   *int
	MinAge        *int
	Weight        *float64
	RankOverall   *int

	Designers        []DesignerCredit
	Artists          []string
	Publishers       []string
	Mechanics        []string
	Categories       []string
	GenreRanks       []GenreRank
	BestPlayerCounts []int
	Awards           []AwardInstance
}

// DesignerCredit is a designer name plus whether the source credits the
// design as a solo effort.
type DesignerCredit struct {
	Name   string
	IsSolo bool
}

// GenreRank places a game within one genre's ranking. Rank is nil when the
// game belongs to the genre but is unranked.
type GenreRank struct {
	Genre  string
	Rank   *int
	BggURL *string
}

// AwardInstance identifies one award definition: the same name/year/type/
// category earned by several games resolves to a single shared row.
type AwardInstance struct {
	Name     string
	Year     int
	Type     string
	Category string
	BggURL   *string
}

// Fetcher supplies raw documents from the external catalog. Implementations
// own pagination, rate limiting and authentication; the pipeline only sees
// the resulting documents.
type Fetcher interface {
	FetchGame(ctx context.Context, bggID int) (*Document, error)
	FetchRankingIDs(ctx context.Context, page int) ([]int, error)
}
