package ingest

import (
	"errors"
	"testing"

	"bgg-catalog/internal/db"

	"gorm.io/gorm"
)

func TestResolverCreatesEntityOnFirstSight(t *testing.T) {
	conn := newTestDB(t)
	r := NewResolver()

	id, err := r.Designer(conn, "Isaac Childres")
	if err != nil {
		t.Fatalf("resolve designer: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero designer id")
	}

	var row db.Designer
	if err := conn.First(&row, id).Error; err != nil {
		t.Fatalf("load designer row: %v", err)
	}
	if row.Name != "Isaac Childres" {
		t.Fatalf("expected stored name, got %q", row.Name)
	}
}

func TestResolverReturnsSameIDForSameName(t *testing.T) {
	conn := newTestDB(t)

	first, err := NewResolver().Mechanic(conn, "Hand Management")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	// A fresh resolver has a cold cache, so this exercises the store path.
	second, err := NewResolver().Mechanic(conn, "Hand Management")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected one mechanic id, got %d and %d", first, second)
	}

	var count int64
	if err := conn.Model(&db.Mechanic{}).Count(&count).Error; err != nil {
		t.Fatalf("count mechanics: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one mechanic row, got %d", count)
	}
}

func TestResolverTreatsCaseAsDistinct(t *testing.T) {
	conn := newTestDB(t)
	r := NewResolver()

	lower, err := r.Category(conn, "fantasy")
	if err != nil {
		t.Fatalf("resolve lower: %v", err)
	}
	upper, err := r.Category(conn, "Fantasy")
	if err != nil {
		t.Fatalf("resolve upper: %v", err)
	}
	if lower == upper {
		t.Fatal("expected case-differing names to resolve to distinct entities")
	}
}

func TestResolverCachesWithinUnitOfWork(t *testing.T) {
	conn := newTestDB(t)
	r := NewResolver()

	id, err := r.Publisher(conn, "Cephalofair Games")
	if err != nil {
		t.Fatalf("resolve publisher: %v", err)
	}
	// Delete the row behind the cache; a warm cache must still answer.
	if err := conn.Delete(&db.Publisher{}, id).Error; err != nil {
		t.Fatalf("delete publisher: %v", err)
	}
	again, err := r.Publisher(conn, "Cephalofair Games")
	if err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if again != id {
		t.Fatalf("expected cached id %d, got %d", id, again)
	}
}

func TestResolverAwardDefinitionSharing(t *testing.T) {
	conn := newTestDB(t)
	r := NewResolver()

	winner := AwardInstance{Name: "Golden Geek", Year: 2017, Type: "winner", Category: "Strategy"}
	nominee := AwardInstance{Name: "Golden Geek", Year: 2017, Type: "nominee", Category: "Strategy"}

	a, err := r.Award(conn, winner)
	if err != nil {
		t.Fatalf("resolve winner: %v", err)
	}
	b, err := NewResolver().Award(conn, winner)
	if err != nil {
		t.Fatalf("re-resolve winner: %v", err)
	}
	c, err := r.Award(conn, nominee)
	if err != nil {
		t.Fatalf("resolve nominee: %v", err)
	}
	if a != b {
		t.Fatalf("expected shared definition, got %d and %d", a, b)
	}
	if a == c {
		t.Fatal("expected differing type to mint a new definition")
	}
}

func TestResolverStoresReferenceURLs(t *testing.T) {
	conn := newTestDB(t)
	r := NewResolver()

	genreID, err := r.Genre(conn, "Strategy", strp("https://boardgamegeek.com/strategygames/browse/boardgame"))
	if err != nil {
		t.Fatalf("resolve genre: %v", err)
	}
	var genre db.Genre
	if err := conn.First(&genre, genreID).Error; err != nil {
		t.Fatalf("load genre: %v", err)
	}
	if genre.BggURL == nil || *genre.BggURL != "https://boardgamegeek.com/strategygames/browse/boardgame" {
		t.Fatalf("expected genre url stored, got %v", genre.BggURL)
	}

	awardID, err := r.Award(conn, AwardInstance{
		Name:   "Golden Geek Board Game of the Year",
		Year:   2017,
		Type:   "Winner",
		BggURL: strp("https://boardgamegeek.com/boardgamehonor/42829"),
	})
	if err != nil {
		t.Fatalf("resolve award: %v", err)
	}
	var award db.Award
	if err := conn.First(&award, awardID).Error; err != nil {
		t.Fatalf("load award: %v", err)
	}
	if award.BggURL == nil || *award.BggURL != "https://boardgamegeek.com/boardgamehonor/42829" {
		t.Fatalf("expected award url stored, got %v", award.BggURL)
	}
}

func TestResolverSurvivesLostInsertRace(t *testing.T) {
	conn := newTestDB(t)

	// Pre-create the row so the resolver's insert hits the unique index the
	// way a losing concurrent transaction would.
	existing := db.Artist{Name: "Alexandr Elichev"}
	if err := conn.Create(&existing).Error; err != nil {
		t.Fatalf("seed artist: %v", err)
	}

	id, err := NewResolver().Artist(conn, "Alexandr Elichev")
	if err != nil {
		t.Fatalf("expected fallback lookup to succeed, got %v", err)
	}
	if id != existing.ID {
		t.Fatalf("expected existing id %d, got %d", existing.ID, id)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatal("expected gorm duplicated key to count")
	}
	if !isUniqueViolation(errors.New("UNIQUE constraint failed: designers.name")) {
		t.Fatal("expected sqlite unique message to count")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatal("expected unrelated error to not count")
	}
	if isUniqueViolation(nil) {
		t.Fatal("expected nil to not count")
	}
}
