package repository

import (
	"testing"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/migration"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated.
// One connection only, since each :memory: connection is its own database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migration.Run(db))
	return db
}

func seedPet(t *testing.T, db *gorm.DB, id, ownerID string, createdAt time.Time) *domain.Pet {
	t.Helper()
	pet := &domain.Pet{ID: id, OwnerID: ownerID, Name: "pet-" + id, Species: "dog", CreatedAt: createdAt}
	require.NoError(t, db.Create(pet).Error)
	return pet
}

func seedPost(t *testing.T, db *gorm.DB, p domain.Post) *domain.Post {
	t.Helper()
	if p.Visibility == "" {
		p.Visibility = domain.VisibilityPublic
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}
