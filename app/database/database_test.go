package database

import (
	"path/filepath"
	"testing"

	"github.com/fishingindustry/catalog/app/config"
	"github.com/fishingindustry/catalog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: path}

	// Act
	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	// Assert
	for _, table := range []any{&models.FishType{}, &models.FishingZone{}, &models.FishZoneLink{}, &models.Vessel{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.FileExists(t, path)

	t.Run("Reopening migrates idempotently", func(t *testing.T) {
		again, err := Open(cfg)
		require.NoError(t, err)
		assert.NoError(t, Close(again))
	})
}

func TestOpen_Errors(t *testing.T) {
	testCases := []struct {
		name string
		cfg  *config.Config
	}{
		{
			name: "Unknown driver",
			cfg:  &config.Config{DBDriver: "mysql"},
		},
		{
			name: "Unreachable postgres",
			cfg: &config.Config{
				DBDriver:    config.DriverPostgres,
				PostgresDSN: "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable connect_timeout=1",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, err := Open(tc.cfg)
			assert.Error(t, err)
			assert.Nil(t, db)
		})
	}
}
