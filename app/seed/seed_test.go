package seed

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fishingindustry/catalog/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// writeWorkbook saves sheets to an .xlsx file and returns its path.
func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func validSheets() map[string][][]any {
	return map[string][][]any{
		SheetZones: {
			{"Name", "Description", "Latitude", "Longitude"},
			{"North Sea", "Shelf sea", 56.0, 3.0},
			{"Baltic Sea", "Brackish sea", "58,5", 20},
			{},
		},
		SheetFish: {
			{"name", "DESCRIPTION", "Price", "Family", "Habitat", "Zones"},
			{"Cod", "Atlantic cod", "3.50", "Gadidae", "Marine", "north sea; Baltic Sea | North Sea"},
			{"Pike", "Freshwater pike", 4, "Esocidae", "Freshwater", ""},
		},
		SheetVessels: {
			{"Name", "Description", "Registration", "Capacity", "Type", "Year"},
			{"Northern Star", "Stern trawler", "NS-101", 120, "Trawler", 1998},
		},
	}
}

func TestLoadAndImport(t *testing.T) {
	// Arrange
	db := newTestDB(t)
	path := writeWorkbook(t, validSheets())
	var logs bytes.Buffer

	// Act
	wb, err := LoadWorkbook(path)
	require.NoError(t, err)
	summary, err := Import(db, wb, slog.New(slog.NewTextHandler(&logs, nil)))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Summary{Zones: 2, FishTypes: 2, Links: 2, Vessels: 1}, summary)
	assert.Contains(t, logs.String(), "workbook imported")

	require.Len(t, wb.Zones, 2)
	assert.Equal(t, 58.5, wb.Zones[1].Zone.Latitude)
	assert.Equal(t, []string{"north sea", "Baltic Sea"}, wb.Fish[0].ZoneNames)

	cod, err := models.NewFishTypesRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "3.5", cod.PricePerKg.String())
	assert.Equal(t, []string{"Baltic Sea", "North Sea"}, []string{cod.Zones[0].Name, cod.Zones[1].Name})

	vessel, err := models.NewVesselsRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "NS-101", vessel.RegistrationNumber)
	assert.Equal(t, 1998, vessel.YearBuilt)
}

func TestReadWorkbook_ConversionErrors(t *testing.T) {
	sheets := validSheets()
	sheets[SheetVessels] = append(sheets[SheetVessels], []any{"Sea Hawk", "", "SH-7", "lots", "Longliner", 2011})

	_, err := LoadWorkbook(writeWorkbook(t, sheets))

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, SheetVessels, rowErr.Sheet)
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, []string{"Must be a whole number"}, rowErr.Fields["capacity"])
	assert.Contains(t, err.Error(), "sheet Vessels row 3")
}

func TestReadWorkbook_NonFiniteCoordinates(t *testing.T) {
	testCases := []struct {
		name          string
		cells         []any
		expectedField string
	}{
		{name: "NaN latitude", cells: []any{"Nowhere", "", "NaN", 3}, expectedField: "latitude"},
		{name: "Infinite longitude", cells: []any{"Nowhere", "", 56, "-Inf"}, expectedField: "longitude"},
		{name: "Overflowing latitude", cells: []any{"Nowhere", "", "1e400", 3}, expectedField: "latitude"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			sheets := validSheets()
			sheets[SheetZones][2] = tc.cells

			// Act
			wb, err := LoadWorkbook(writeWorkbook(t, sheets))

			// Assert
			assert.Nil(t, wb)
			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, SheetZones, rowErr.Sheet)
			assert.Equal(t, 3, rowErr.Row)
			assert.Equal(t, []string{"Must be a number"}, rowErr.Fields[tc.expectedField])
		})
	}
}

func TestImport_RollsBackOnInvalidRow(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(sheets map[string][][]any)
		expectedSheet string
		expectedRow   int
		expectedField string
	}{
		{
			name: "Latitude out of range",
			mutate: func(sheets map[string][][]any) {
				sheets[SheetZones][2] = []any{"Baltic Sea", "", 95, 20}
			},
			expectedSheet: SheetZones,
			expectedRow:   3,
			expectedField: "latitude",
		},
		{
			name: "Unknown zone name",
			mutate: func(sheets map[string][][]any) {
				sheets[SheetFish][2] = []any{"Pike", "Freshwater pike", 4, "Esocidae", "Freshwater", "Lake Vänern"}
			},
			expectedSheet: SheetFish,
			expectedRow:   3,
			expectedField: "zones",
		},
		{
			name: "Negative price",
			mutate: func(sheets map[string][][]any) {
				sheets[SheetFish][1] = []any{"Cod", "Atlantic cod", -1, "", "", ""}
			},
			expectedSheet: SheetFish,
			expectedRow:   2,
			expectedField: "price_per_kg",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			db := newTestDB(t)
			sheets := validSheets()
			tc.mutate(sheets)
			wb, err := LoadWorkbook(writeWorkbook(t, sheets))
			require.NoError(t, err)

			// Act
			_, err = Import(db, wb, slog.New(slog.DiscardHandler))

			// Assert
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "expected a RowError, got %v", err)
			assert.Equal(t, tc.expectedSheet, rowErr.Sheet)
			assert.Equal(t, tc.expectedRow, rowErr.Row)
			assert.Contains(t, rowErr.Fields, tc.expectedField)

			var zones int64
			require.NoError(t, db.Model(&models.FishingZone{}).Count(&zones).Error)
			assert.Zero(t, zones, "Nothing should be committed")
		})
	}
}

func TestSplitNames(t *testing.T) {
	assert.Nil(t, splitNames(""))
	assert.Equal(t, []string{"A", "B", "c"}, splitNames(" A ,B;;c|C| a"))
}
