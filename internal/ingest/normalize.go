package ingest

import (
	"errors"
	"sort"
	"strings"

	"bgg-catalog/internal/db"
)

// ErrInvalidDocument marks a document that cannot be ingested at all. Only a
// missing external id or display name is fatal; any other malformed field is
// normalized to absent instead.
var ErrInvalidDocument = errors.New("document has no usable bgg_id or primary name")

const (
	minYear        = 1900
	maxYear        = 2100
	maxBestPlayers = 20
	maxAwardType   = 20
)

// NormalizedGame is the typed output of Normalize: the scalar game row plus
// the order-irrelevant target sets for every collection field.
type NormalizedGame struct {
	Game             db.Game
	Designers        []DesignerCredit
	Artists          []string
	Publishers       []string
	Mechanics        []string
	Categories       []string
	GenreRanks       []GenreRank
	BestPlayerCounts []int
	Awards           []AwardInstance
}

// Normalize converts one raw document into a NormalizedGame. Out-of-range
// scalars become nil, duplicate collection entries collapse, and empty or
// unusable references are dropped. It never touches the database.
func Normalize(doc *Document) (*NormalizedGame, error) {
	if doc == nil || doc.BggID <= 0 || strings.TrimSpace(doc.PrimaryName) == "" {
		return nil, ErrInvalidDocument
	}

	minPlayers := intAtLeast(doc.MinPlayers, 1)
	maxPlayers := intAtLeast(doc.MaxPlayers, 1)
	if minPlayers != nil && maxPlayers != nil && *minPlayers > *maxPlayers {
		minPlayers, maxPlayers = nil, nil
	}

	ng := &NormalizedGame{
		Game: db.Game{
			BggID:         doc.BggID,
			PrimaryName:   strings.TrimSpace(doc.PrimaryName),
			JapaneseName:  trimmedPtr(doc.JapaneseName),
			YearReleased:  intInRange(doc.YearReleased, minYear, maxYear),
			ImageURL:      trimmedPtr(doc.ImageURL),
			AvgRating:     floatInRange(doc.AvgRating, 0, 10),
			RatingsCount:  intAtLeast(doc.RatingsCount, 0),
			CommentsCount: intAtLeast(doc.CommentsCount, 0),
			MinPlayers:    minPlayers,
			MaxPlayers:    maxPlayers,
			MinPlaytime:   intAtLeast(doc.MinPlaytime, 1),
			MaxPlaytime:   intAtLeast(doc.MaxPlaytime, 1),
			MinAge:        intAtLeast(doc.MinAge, 0),
			Weight:        floatInRange(doc.Weight, 0, 5),
			RankOverall:   intAtLeast(doc.RankOverall, 1),
		},
		Artists:    dedupeNames(doc.Artists),
		Publishers: dedupeNames(doc.Publishers),
		Mechanics:  dedupeNames(doc.Mechanics),
		Categories: dedupeNames(doc.Categories),
	}

	ng.Designers = dedupeDesigners(doc.Designers)
	ng.GenreRanks = dedupeGenreRanks(doc.GenreRanks)
	ng.BestPlayerCounts = dedupeCounts(doc.BestPlayerCounts)
	ng.Awards = dedupeAwards(doc.Awards)
	return ng, nil
}

func intInRange(v *int, min, max int) *int {
	if v == nil || *v < min || *v > max {
		return nil
	}
	out := *v
	return &out
}

func intAtLeast(v *int, min int) *int {
	if v == nil || *v < min {
		return nil
	}
	out := *v
	return &out
}

func floatInRange(v *float64, min, max float64) *float64 {
	if v == nil || *v < min || *v > max {
		return nil
	}
	out := *v
	return &out
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}

// dedupeNames trims, drops empties and collapses duplicates. Matching is
// case-sensitive: two names differing only by case stay distinct entities.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func dedupeDesigners(credits []DesignerCredit) []DesignerCredit {
	index := make(map[string]int, len(credits))
	out := make([]DesignerCredit, 0, len(credits))
	for _, c := range credits {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].IsSolo = out[i].IsSolo || c.IsSolo
			continue
		}
		index[name] = len(out)
		out = append(out, DesignerCredit{Name: name, IsSolo: c.IsSolo})
	}
	return out
}

func dedupeGenreRanks(ranks []GenreRank) []GenreRank {
	seen := make(map[string]struct{}, len(ranks))
	out := make([]GenreRank, 0, len(ranks))
	for _, r := range ranks {
		genre := strings.TrimSpace(r.Genre)
		if genre == "" {
			continue
		}
		if _, ok := seen[genre]; ok {
			continue
		}
		seen[genre] = struct{}{}
		out = append(out, GenreRank{
			Genre:  genre,
			Rank:   intAtLeast(r.Rank, 1),
			BggURL: trimmedPtr(r.BggURL),
		})
	}
	return out
}

func dedupeCounts(counts []int) []int {
	seen := make(map[int]struct{}, len(counts))
	out := make([]int, 0, len(counts))
	for _, c := range counts {
		if c < 1 || c > maxBestPlayers {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

func dedupeAwards(awards []AwardInstance) []AwardInstance {
	type key struct {
		name, typ, category string
		year                int
	}
	seen := make(map[key]struct{}, len(awards))
	out := make([]AwardInstance, 0, len(awards))
	for _, a := range awards {
		a.Name = strings.TrimSpace(a.Name)
		a.Type = strings.TrimSpace(a.Type)
		a.Category = strings.TrimSpace(a.Category)
		a.BggURL = trimmedPtr(a.BggURL)
		if a.Name == "" || a.Type == "" || len(a.Type) > maxAwardType {
			continue
		}
		if a.Year < minYear || a.Year > maxYear {
			continue
		}
		k := key{a.Name, a.Type, a.Category, a.Year}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
