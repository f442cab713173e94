package ingest

import (
	"context"
	"errors"
	"fmt"

	"bgg-catalog/internal/db"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Writer commits one game end to end: the scalar upsert keyed on bgg_id plus
// every association reconciliation, inside a single transaction. A failure
// anywhere rolls the whole game back.
type Writer struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewWriter(conn *gorm.DB, log *logrus.Logger) *Writer {
	return &Writer{db: conn, log: log}
}

// Result reports how the game row was applied.
type Result struct {
	GameID  uint
	Created bool
}

// gameColumns are the scalar attributes replaced wholesale on every
// sighting; nil means the column goes back to NULL.
var gameColumns = []string{
	"primary_name", "japanese_name", "year_released", "image_url",
	"avg_rating", "ratings_count", "comments_count",
	"min_players", "max_players", "min_playtime", "max_playtime",
	"min_age", "weight", "rank_overall",
}

// UpsertGame normalizes doc and writes it. Re-running with an unchanged
// document updates the game row timestamps only; association rows see zero
// writes.
func (w *Writer) UpsertGame(ctx context.Context, doc *Document) (Result, error) {
	ng, err := Normalize(doc)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Game
		err := tx.Where("bgg_id = ?", ng.Game.BggID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&ng.Game).Error; err != nil {
				return fmt.Errorf("create game %d: %w", ng.Game.BggID, err)
			}
			res = Result{GameID: ng.Game.ID, Created: true}
		case err != nil:
			return fmt.Errorf("load game %d: %w", ng.Game.BggID, err)
		default:
			if err := tx.Model(&existing).Select(gameColumns).Updates(ng.Game).Error; err != nil {
				return fmt.Errorf("update game %d: %w", ng.Game.BggID, err)
			}
			res = Result{GameID: existing.ID}
		}

		return w.syncAssociations(tx, res.GameID, ng)
	})
	if err != nil {
		return Result{}, err
	}

	w.log.WithFields(logrus.Fields{
		"bgg_id":  ng.Game.BggID,
		"game_id": res.GameID,
		"created": res.Created,
	}).Debug("game upserted")
	return res, nil
}

// syncAssociations resolves names to ids and reconciles every relation kind.
// Kinds are attempted independently and failures collected, so one broken
// kind still reports the others; any failure aborts the transaction.
func (w *Writer) syncAssociations(tx *gorm.DB, gameID uint, ng *NormalizedGame) error {
	resolver := NewResolver()

	kinds := []struct {
		name string
		run  func() error
	}{
		{"designers", func() error {
			target := make(map[uint]bool, len(ng.Designers))
			for _, c := range ng.Designers {
				id, err := resolver.Designer(tx, c.Name)
				if err != nil {
					return err
				}
				target[id] = target[id] || c.IsSolo
			}
			return syncDesigners(tx, gameID, target)
		}},
		{"artists", func() error {
			ids, err := resolveNames(tx, ng.Artists, resolver.Artist)
			if err != nil {
				return err
			}
			return syncArtists(tx, gameID, ids)
		}},
		{"publishers", func() error {
			ids, err := resolveNames(tx, ng.Publishers, resolver.Publisher)
			if err != nil {
				return err
			}
			return syncPublishers(tx, gameID, ids)
		}},
		{"mechanics", func() error {
			ids, err := resolveNames(tx, ng.Mechanics, resolver.Mechanic)
			if err != nil {
				return err
			}
			return syncMechanics(tx, gameID, ids)
		}},
		{"categories", func() error {
			ids, err := resolveNames(tx, ng.Categories, resolver.Category)
			if err != nil {
				return err
			}
			return syncCategories(tx, gameID, ids)
		}},
		{"awards", func() error {
			ids := make([]uint, 0, len(ng.Awards))
			for _, a := range ng.Awards {
				id, err := resolver.Award(tx, a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return syncAwards(tx, gameID, ids)
		}},
		{"genre_ranks", func() error {
			target := make(map[uint]*int, len(ng.GenreRanks))
			for _, r := range ng.GenreRanks {
				id, err := resolver.Genre(tx, r.Genre, r.BggURL)
				if err != nil {
					return err
				}
				target[id] = r.Rank
			}
			return syncGenreRanks(tx, gameID, target)
		}},
		{"best_player_counts", func() error {
			return syncBestPlayerCounts(tx, gameID, ng.BestPlayerCounts)
		}},
	}

	var errs []error
	for _, kind := range kinds {
		if err := kind.run(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind.name, err))
		}
	}
	return errors.Join(errs...)
}

func resolveNames(tx *gorm.DB, names []string, resolve func(*gorm.DB, string) (uint, error)) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		id, err := resolve(tx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
