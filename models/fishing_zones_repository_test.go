package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFishingZonesRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewFishingZonesRepository(db)
	fishRepo := NewFishTypesRepository(db)

	cod := newCod()
	require.NoError(t, fishRepo.CreateFishType(cod, nil))
	herring := &FishType{Name: "Herring", Description: "Small", PricePerKg: decimal.NewFromInt(1)}
	require.NoError(t, fishRepo.CreateFishType(herring, nil))

	zone := &FishingZone{Name: "North Sea", Description: "Shelf sea", Latitude: 56.5, Longitude: 3.2}
	require.NoError(t, repo.CreateFishingZone(zone, []uint{cod.ID, 777}))
	assert.Equal(t, []uint{cod.ID}, zone.FishTypeIDs())

	t.Run("Links are visible from the fish side", func(t *testing.T) {
		got, err := fishRepo.GetByID(cod.ID)
		require.NoError(t, err)
		assert.Equal(t, []Ref{{ID: zone.ID, Name: "North Sea"}}, got.Zones)
	})

	t.Run("Update reconciles fish types", func(t *testing.T) {
		update := &FishingZone{ID: zone.ID, Name: "North Sea", Latitude: -10, Longitude: 170}
		require.NoError(t, repo.UpdateFishingZone(update, []uint{herring.ID}))

		got, err := repo.GetByID(zone.ID)
		require.NoError(t, err)
		assert.Equal(t, -10.0, got.Latitude)
		assert.Equal(t, 170.0, got.Longitude)
		assert.Empty(t, got.Description)
		assert.Equal(t, []Ref{{ID: herring.ID, Name: "Herring"}}, got.FishTypes)
	})

	t.Run("List loads fish types", func(t *testing.T) {
		zones, err := repo.GetAllFishingZones()
		require.NoError(t, err)
		require.Len(t, zones, 1)
		assert.Equal(t, []uint{herring.ID}, zones[0].FishTypeIDs())
	})

	t.Run("Delete keeps fish types", func(t *testing.T) {
		deleted, err := repo.DeleteFishingZone(zone.ID)
		require.NoError(t, err)
		assert.Equal(t, "North Sea", deleted.Name)
		assert.Equal(t, int64(0), linkCount(t, db))

		_, err = fishRepo.GetByID(herring.ID)
		assert.NoError(t, err)

		_, err = repo.GetByID(zone.ID)
		assert.ErrorIs(t, err, ErrFishingZoneNotFound)
	})

	t.Run("Update of a missing zone", func(t *testing.T) {
		err := repo.UpdateFishingZone(&FishingZone{ID: 999, Name: "Gone"}, nil)
		assert.ErrorIs(t, err, ErrFishingZoneNotFound)
	})
}
