package ingest

import (
	"errors"
	"fmt"
	"strings"

	"bgg-catalog/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// onNameConflict makes the insert an atomic insert-if-absent on the entity's
// unique name, so two transactions first-sighting the same name never mint
// two ids.
var onNameConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "name"}},
	DoNothing: true,
}

var onAwardConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "name"}, {Name: "year"}, {Name: "type"}, {Name: "category"},
	},
	DoNothing: true,
}

// Resolver maps free-text entity names to stable row ids, creating the row
// on first sight. The cache only short-circuits repeat lookups within one
// unit of work; correctness never depends on it being warm.
type Resolver struct {
	cache map[string]uint
}

func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]uint)}
}

func (r *Resolver) Designer(tx *gorm.DB, name string) (uint, error) {
	return r.resolve(tx, "designer", name, func() (uint, error) {
		row := db.Designer{Name: name}
		err := tx.Clauses(onNameConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Designer
		err := tx.Where("name = ?", name).First(&row).Error
		return row.ID, err
	})
}

func (r *Resolver) Artist(tx *gorm.DB, name string) (uint, error) {
	return r.resolve(tx, "artist", name, func() (uint, error) {
		row := db.Artist{Name: name}
		err := tx.Clauses(onNameConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Artist
		err := tx.Where("name = ?", name).First(&row).Error
		return row.ID, err
	})
}

func (r *Resolver) Publisher(tx *gorm.DB, name string) (uint, error) {
	return r.resolve(tx, "publisher", name, func() (uint, error) {
		row := db.Publisher{Name: name}
		err := tx.Clauses(onNameConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Publisher
		err := tx.Where("name = ?", name).First(&row).Error
		return row.ID, err
	})
}

func (r *Resolver) Mechanic(tx *gorm.DB, name string) (uint, error) {
	return r.resolve(tx, "mechanic", name, func() (uint, error) {
		row := db.Mechanic{Name: name}
		err := tx.Clauses(onNameConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Mechanic
		err := tx.Where("name = ?", name).First(&row).Error
		return row.ID, err
	})
}

func (r *Resolver) Category(tx *gorm.DB, name string) (uint, error) {
	return r.resolve(tx, "category", name, func() (uint, error) {
		row := db.Category{Name: name}
		err := tx.Clauses(onNameConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Category
		err := tx.Where("name = ?", name).First(&row).Error
		return row.ID, err
	})
}

func (r *Resolver) Genre(tx *gorm.DB, name string, bggURL *string) (uint, error) {
	return r.resolve(tx, "genre", name, func() (uint, error) {
		row := db.Genre{Name: name, BggURL: bggURL}
		err := tx.Clauses(onNameConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Genre
		err := tx.Where("name = ?", name).First(&row).Error
		return row.ID, err
	})
}

func (r *Resolver) Award(tx *gorm.DB, a AwardInstance) (uint, error) {
	key := fmt.Sprintf("%s\x00%d\x00%s\x00%s", a.Name, a.Year, a.Type, a.Category)
	return r.resolve(tx, "award", key, func() (uint, error) {
		row := db.Award{Name: a.Name, Year: a.Year, Type: a.Type, Category: a.Category, BggURL: a.BggURL}
		err := tx.Clauses(onAwardConflict).Create(&row).Error
		return row.ID, err
	}, func() (uint, error) {
		var row db.Award
		err := tx.Where("name = ? AND year = ? AND type = ? AND category = ?",
			a.Name, a.Year, a.Type, a.Category).First(&row).Error
		return row.ID, err
	})
}

// resolve runs the insert-if-absent, then falls back to a lookup when the
// insert hit an existing row. A unique violation from a losing concurrent
// insert is converted into a successful lookup, never surfaced.
func (r *Resolver) resolve(tx *gorm.DB, kind, key string, insert, find func() (uint, error)) (uint, error) {
	ck := kind + "\x00" + key
	if id, ok := r.cache[ck]; ok {
		return id, nil
	}
	id, err := insert()
	if err != nil {
		if !isUniqueViolation(err) {
			return 0, fmt.Errorf("insert %s %q: %w", kind, key, err)
		}
		id = 0
	}
	if id == 0 {
		if id, err = find(); err != nil {
			return 0, fmt.Errorf("lookup %s %q: %w", kind, key, err)
		}
	}
	r.cache[ck] = id
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
