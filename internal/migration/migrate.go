package migration

import (
	"fmt"

	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table owned by this service
func Models() []interface{} {
	return []interface{}{
		&domain.Pet{},
		&domain.Post{},
		&domain.PostLike{},
		&domain.PostComment{},
		&domain.Story{},
		&domain.UserFollow{},
		&domain.UserBlock{},
		&domain.MatchRecord{},
	}
}

// Run executes AutoMigrate for all models. Existing tables only gain
// missing columns and indexes.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Pending returns the tables that Run would create
func Pending(db *gorm.DB) ([]string, error) {
	var missing []string
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		if !db.Migrator().HasTable(stmt.Schema.Table) {
			missing = append(missing, stmt.Schema.Table)
		}
	}
	return missing, nil
}

// Verify checks that every table exists and that the match ledger still
// enforces one row per pet pair
func Verify(db *gorm.DB) error {
	missing, err := Pending(db)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %v", missing)
	}
	if !db.Migrator().HasIndex(&domain.MatchRecord{}, "uq_matches_pair_key") {
		return fmt.Errorf("matches: unique pair index uq_matches_pair_key is missing")
	}
	return nil
}
