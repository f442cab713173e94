package ingest

import (
	"reflect"
	"sort"
	"testing"

	"bgg-catalog/internal/db"

	"gorm.io/gorm"
)

func TestDiffKeys(t *testing.T) {
	cases := []struct {
		name             string
		current, target  []uint
		insert, deletion []uint
	}{
		{"both empty", nil, nil, nil, nil},
		{"all new", nil, []uint{1, 2}, []uint{1, 2}, nil},
		{"all stale", []uint{1, 2}, nil, nil, []uint{1, 2}},
		{"overlap", []uint{1, 2, 3}, []uint{2, 3, 4}, []uint{4}, []uint{1}},
		{"unchanged", []uint{5, 6}, []uint{6, 5}, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ins, del := diffKeys(tc.current, tc.target)
			if !reflect.DeepEqual(ins, tc.insert) {
				t.Fatalf("expected inserts %v, got %v", tc.insert, ins)
			}
			if !reflect.DeepEqual(del, tc.deletion) {
				t.Fatalf("expected deletes %v, got %v", tc.deletion, del)
			}
		})
	}
}

func seedGame(t *testing.T, conn *gorm.DB, bggID int) uint {
	t.Helper()
	game := db.Game{BggID: bggID, PrimaryName: "Seed"}
	if err := conn.Create(&game).Error; err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return game.ID
}

func seedMechanics(t *testing.T, conn *gorm.DB, names ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		row := db.Mechanic{Name: name}
		if err := conn.Create(&row).Error; err != nil {
			t.Fatalf("seed mechanic %q: %v", name, err)
		}
		ids = append(ids, row.ID)
	}
	return ids
}

func mechanicLinks(t *testing.T, conn *gorm.DB, gameID uint) []uint {
	t.Helper()
	var ids []uint
	if err := conn.Model(&db.GameMechanic{}).Where("game_id = ?", gameID).
		Pluck("mechanic_id", &ids).Error; err != nil {
		t.Fatalf("read mechanic links: %v", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func gameCount(t *testing.T, conn *gorm.DB, id uint) int {
	t.Helper()
	var row db.Mechanic
	if err := conn.First(&row, id).Error; err != nil {
		t.Fatalf("load mechanic %d: %v", id, err)
	}
	return row.GameCount
}

func TestSyncMechanicsReconcilesAndCounts(t *testing.T) {
	conn := newTestDB(t)
	gameID := seedGame(t, conn, 174430)
	ids := seedMechanics(t, conn, "Hand Management", "Campaign", "Dice Rolling")

	if err := syncMechanics(conn, gameID, []uint{ids[0], ids[1]}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if got := mechanicLinks(t, conn, gameID); !reflect.DeepEqual(got, []uint{ids[0], ids[1]}) {
		t.Fatalf("expected links %v, got %v", []uint{ids[0], ids[1]}, got)
	}
	if gameCount(t, conn, ids[0]) != 1 || gameCount(t, conn, ids[1]) != 1 {
		t.Fatal("expected counters incremented for linked mechanics")
	}

	// Replace one member; the surviving link must be untouched and both
	// counters must move by exactly the links that changed.
	if err := syncMechanics(conn, gameID, []uint{ids[1], ids[2]}); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if got := mechanicLinks(t, conn, gameID); !reflect.DeepEqual(got, []uint{ids[1], ids[2]}) {
		t.Fatalf("expected links %v, got %v", []uint{ids[1], ids[2]}, got)
	}
	if gameCount(t, conn, ids[0]) != 0 {
		t.Fatalf("expected dropped mechanic counter back to 0, got %d", gameCount(t, conn, ids[0]))
	}
	if gameCount(t, conn, ids[1]) != 1 || gameCount(t, conn, ids[2]) != 1 {
		t.Fatal("expected kept and added mechanic counters at 1")
	}
}

func TestSyncMechanicsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	gameID := seedGame(t, conn, 1)
	ids := seedMechanics(t, conn, "Hand Management")

	for i := 0; i < 3; i++ {
		if err := syncMechanics(conn, gameID, ids); err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
	}
	if got := gameCount(t, conn, ids[0]); got != 1 {
		t.Fatalf("expected counter to stay at 1 across reruns, got %d", got)
	}
}

func TestSyncDesignersUpdatesSoloInPlace(t *testing.T) {
	conn := newTestDB(t)
	gameID := seedGame(t, conn, 1)

	designer := db.Designer{Name: "Isaac Childres"}
	if err := conn.Create(&designer).Error; err != nil {
		t.Fatalf("seed designer: %v", err)
	}

	if err := syncDesigners(conn, gameID, map[uint]bool{designer.ID: false}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := syncDesigners(conn, gameID, map[uint]bool{designer.ID: true}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	var links []db.GameDesigner
	if err := conn.Where("game_id = ?", gameID).Find(&links).Error; err != nil {
		t.Fatalf("read links: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected one link row, got %d", len(links))
	}
	if !links[0].IsSolo {
		t.Fatal("expected solo flag updated in place")
	}
}

func TestSyncGenreRanksUpdatesRankInPlace(t *testing.T) {
	conn := newTestDB(t)
	gameID := seedGame(t, conn, 1)

	genre := db.Genre{Name: "Strategy"}
	if err := conn.Create(&genre).Error; err != nil {
		t.Fatalf("seed genre: %v", err)
	}

	if err := syncGenreRanks(conn, gameID, map[uint]*int{genre.ID: intp(15)}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := syncGenreRanks(conn, gameID, map[uint]*int{genre.ID: intp(9)}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	var rows []db.GameGenreRank
	if err := conn.Where("game_id = ?", gameID).Find(&rows).Error; err != nil {
		t.Fatalf("read genre ranks: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one genre rank row, got %d", len(rows))
	}
	if rows[0].RankInGenre == nil || *rows[0].RankInGenre != 9 {
		t.Fatalf("expected rank 9, got %v", rows[0].RankInGenre)
	}

	// Rank withdrawn entirely: membership survives, number goes NULL.
	if err := syncGenreRanks(conn, gameID, map[uint]*int{genre.ID: nil}); err != nil {
		t.Fatalf("third sync: %v", err)
	}
	if err := conn.Where("game_id = ?", gameID).Find(&rows).Error; err != nil {
		t.Fatalf("re-read genre ranks: %v", err)
	}
	if len(rows) != 1 || rows[0].RankInGenre != nil {
		t.Fatalf("expected unranked membership, got %#v", rows)
	}
}

func TestSyncBestPlayerCountsDiff(t *testing.T) {
	conn := newTestDB(t)
	gameID := seedGame(t, conn, 1)

	if err := syncBestPlayerCounts(conn, gameID, []int{2, 3}); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := syncBestPlayerCounts(conn, gameID, []int{3, 4}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	var counts []int
	if err := conn.Model(&db.GameBestPlayerCount{}).Where("game_id = ?", gameID).
		Order("player_count").Pluck("player_count", &counts).Error; err != nil {
		t.Fatalf("read counts: %v", err)
	}
	if !reflect.DeepEqual(counts, []int{3, 4}) {
		t.Fatalf("expected counts [3 4], got %v", counts)
	}
}
