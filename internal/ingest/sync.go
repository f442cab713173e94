package ingest

import (
	"fmt"

	"bgg-catalog/internal/db"

	"gorm.io/gorm"
)

// Set reconciliation for one game's association and fact rows: insert what
// the target set has and the store lacks, delete the reverse, and update
// non-key attributes (solo flag, genre rank) in place so row identity and
// dependent counters survive unchanged keys.

// diffKeys returns target−current and current−target.
func diffKeys[K comparable](current, target []K) (toInsert, toDelete []K) {
	currentSet := make(map[K]struct{}, len(current))
	for _, k := range current {
		currentSet[k] = struct{}{}
	}
	targetSet := make(map[K]struct{}, len(target))
	for _, k := range target {
		targetSet[k] = struct{}{}
	}
	for _, k := range target {
		if _, ok := currentSet[k]; !ok {
			toInsert = append(toInsert, k)
		}
	}
	for _, k := range current {
		if _, ok := targetSet[k]; !ok {
			toDelete = append(toDelete, k)
		}
	}
	return toInsert, toDelete
}

// syncPairs reconciles one plain (game_id, entity_id) link table and reports
// which entity ids were actually inserted and deleted.
func syncPairs[T any](tx *gorm.DB, gameID uint, column string, target []uint, row func(uint) T) (added, removed []uint, err error) {
	var current []uint
	if err := tx.Model(new(T)).Where("game_id = ?", gameID).Pluck(column, &current).Error; err != nil {
		return nil, nil, fmt.Errorf("read current %s set: %w", column, err)
	}
	added, removed = diffKeys(current, target)
	for _, id := range added {
		link := row(id)
		if err := tx.Create(&link).Error; err != nil {
			return nil, nil, fmt.Errorf("insert %s %d: %w", column, id, err)
		}
	}
	if len(removed) > 0 {
		if err := tx.Where("game_id = ? AND "+column+" IN ?", gameID, removed).Delete(new(T)).Error; err != nil {
			return nil, nil, fmt.Errorf("delete stale %s rows: %w", column, err)
		}
	}
	return added, removed, nil
}

// adjustGameCount moves the denormalized per-entity usage counter by the
// links actually inserted or deleted, keeping reconciliation idempotent.
func adjustGameCount(tx *gorm.DB, model interface{}, added, removed []uint) error {
	if len(added) > 0 {
		if err := tx.Model(model).Where("id IN ?", added).
			UpdateColumn("game_count", gorm.Expr("game_count + 1")).Error; err != nil {
			return fmt.Errorf("increment game_count: %w", err)
		}
	}
	if len(removed) > 0 {
		if err := tx.Model(model).Where("id IN ?", removed).
			UpdateColumn("game_count", gorm.Expr("game_count - 1")).Error; err != nil {
			return fmt.Errorf("decrement game_count: %w", err)
		}
	}
	return nil
}

func syncArtists(tx *gorm.DB, gameID uint, target []uint) error {
	_, _, err := syncPairs(tx, gameID, "artist_id", target, func(id uint) db.GameArtist {
		return db.GameArtist{GameID: gameID, ArtistID: id}
	})
	return err
}

func syncPublishers(tx *gorm.DB, gameID uint, target []uint) error {
	_, _, err := syncPairs(tx, gameID, "publisher_id", target, func(id uint) db.GamePublisher {
		return db.GamePublisher{GameID: gameID, PublisherID: id}
	})
	return err
}

func syncMechanics(tx *gorm.DB, gameID uint, target []uint) error {
	added, removed, err := syncPairs(tx, gameID, "mechanic_id", target, func(id uint) db.GameMechanic {
		return db.GameMechanic{GameID: gameID, MechanicID: id}
	})
	if err != nil {
		return err
	}
	return adjustGameCount(tx, &db.Mechanic{}, added, removed)
}

func syncCategories(tx *gorm.DB, gameID uint, target []uint) error {
	added, removed, err := syncPairs(tx, gameID, "category_id", target, func(id uint) db.GameCategory {
		return db.GameCategory{GameID: gameID, CategoryID: id}
	})
	if err != nil {
		return err
	}
	return adjustGameCount(tx, &db.Category{}, added, removed)
}

func syncAwards(tx *gorm.DB, gameID uint, target []uint) error {
	_, _, err := syncPairs(tx, gameID, "award_id", target, func(id uint) db.GameAward {
		return db.GameAward{GameID: gameID, AwardID: id}
	})
	return err
}

// syncDesigners reconciles on designer id and updates a changed solo flag in
// place rather than deleting and reinserting the link.
func syncDesigners(tx *gorm.DB, gameID uint, target map[uint]bool) error {
	var current []db.GameDesigner
	if err := tx.Where("game_id = ?", gameID).Find(&current).Error; err != nil {
		return fmt.Errorf("read current designer set: %w", err)
	}
	currentIDs := make([]uint, 0, len(current))
	currentSolo := make(map[uint]bool, len(current))
	for _, link := range current {
		currentIDs = append(currentIDs, link.DesignerID)
		currentSolo[link.DesignerID] = link.IsSolo
	}
	targetIDs := make([]uint, 0, len(target))
	for id := range target {
		targetIDs = append(targetIDs, id)
	}

	toInsert, toDelete := diffKeys(currentIDs, targetIDs)
	for _, id := range toInsert {
		link := db.GameDesigner{GameID: gameID, DesignerID: id, IsSolo: target[id]}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("insert designer %d: %w", id, err)
		}
	}
	if len(toDelete) > 0 {
		if err := tx.Where("game_id = ? AND designer_id IN ?", gameID, toDelete).
			Delete(&db.GameDesigner{}).Error; err != nil {
			return fmt.Errorf("delete stale designer rows: %w", err)
		}
	}
	for id, solo := range target {
		if had, ok := currentSolo[id]; ok && had != solo {
			if err := tx.Model(&db.GameDesigner{}).
				Where("game_id = ? AND designer_id = ?", gameID, id).
				Update("is_solo", solo).Error; err != nil {
				return fmt.Errorf("update solo flag for designer %d: %w", id, err)
			}
		}
	}
	return nil
}

// syncGenreRanks reconciles on genre id; a changed rank number is an
// in-place update.
func syncGenreRanks(tx *gorm.DB, gameID uint, target map[uint]*int) error {
	var current []db.GameGenreRank
	if err := tx.Where("game_id = ?", gameID).Find(&current).Error; err != nil {
		return fmt.Errorf("read current genre ranks: %w", err)
	}
	currentIDs := make([]uint, 0, len(current))
	currentRank := make(map[uint]*int, len(current))
	for _, row := range current {
		currentIDs = append(currentIDs, row.GenreID)
		currentRank[row.GenreID] = row.RankInGenre
	}
	targetIDs := make([]uint, 0, len(target))
	for id := range target {
		targetIDs = append(targetIDs, id)
	}

	toInsert, toDelete := diffKeys(currentIDs, targetIDs)
	for _, id := range toInsert {
		row := db.GameGenreRank{GameID: gameID, GenreID: id, RankInGenre: target[id]}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert genre rank %d: %w", id, err)
		}
	}
	if len(toDelete) > 0 {
		if err := tx.Where("game_id = ? AND genre_id IN ?", gameID, toDelete).
			Delete(&db.GameGenreRank{}).Error; err != nil {
			return fmt.Errorf("delete stale genre ranks: %w", err)
		}
	}
	for id, rank := range target {
		if had, ok := currentRank[id]; ok && !intPtrEqual(had, rank) {
			if err := tx.Model(&db.GameGenreRank{}).
				Where("game_id = ? AND genre_id = ?", gameID, id).
				Update("rank_in_genre", rank).Error; err != nil {
				return fmt.Errorf("update genre rank %d: %w", id, err)
			}
		}
	}
	return nil
}

func syncBestPlayerCounts(tx *gorm.DB, gameID uint, target []int) error {
	var current []int
	if err := tx.Model(&db.GameBestPlayerCount{}).Where("game_id = ?", gameID).
		Pluck("player_count", &current).Error; err != nil {
		return fmt.Errorf("read current best player counts: %w", err)
	}
	toInsert, toDelete := diffKeys(current, target)
	for _, count := range toInsert {
		row := db.GameBestPlayerCount{GameID: gameID, PlayerCount: count}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert best player count %d: %w", count, err)
		}
	}
	if len(toDelete) > 0 {
		if err := tx.Where("game_id = ? AND player_count IN ?", gameID, toDelete).
			Delete(&db.GameBestPlayerCount{}).Error; err != nil {
			return fmt.Errorf("delete stale best player counts: %w", err)
		}
	}
	return nil
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
