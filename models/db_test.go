package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated SQLite database in a per-test directory.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func seedZones(t *testing.T, db *gorm.DB, names ...string) []uint {
	t.Helper()

	ids := make([]uint, len(names))
	for i, name := range names {
		zone := FishingZone{Name: name, Latitude: 60, Longitude: 5}
		require.NoError(t, db.Create(&zone).Error)
		ids[i] = zone.ID
	}
	return ids
}

func linkCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&FishZoneLink{}).Count(&n).Error)
	return n
}
