// Package seed loads catalog data from an .xlsx workbook with the sheets
// Zones, Fish and Vessels. The first row of each sheet holds the headers.
package seed

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/fishingindustry/catalog/models"
)

const (
	SheetZones   = "Zones"
	SheetFish    = "Fish"
	SheetVessels = "Vessels"
)

// RowError points at the workbook row that could not be imported.
type RowError struct {
	Sheet  string
	Row    int
	Fields models.FieldErrors
}

func (e *RowError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, ", "))
	}
	return fmt.Sprintf("sheet %s row %d: %s", e.Sheet, e.Row, strings.Join(parts, "; "))
}

type ZoneRow struct {
	Row  int
	Zone models.FishingZone
}

type FishRow struct {
	Row       int
	Fish      models.FishType
	ZoneNames []string
}

type VesselRow struct {
	Row    int
	Vessel models.Vessel
}

type Workbook struct {
	Zones   []ZoneRow
	Fish    []FishRow
	Vessels []VesselRow
}

type Summary struct {
	Zones     int
	FishTypes int
	Links     int
	Vessels   int
}

func LoadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f)
}

// ReadWorkbook parses every known sheet. Missing sheets are skipped; cells
// that do not convert are reported as a RowError.
func ReadWorkbook(f *excelize.File) (*Workbook, error) {
	wb := &Workbook{}

	err := eachRow(f, SheetZones, func(r row) {
		wb.Zones = append(wb.Zones, ZoneRow{Row: r.number, Zone: models.FishingZone{
			Name:        r.get("name"),
			Description: r.get("description"),
			Latitude:    r.number64("latitude", "lat"),
			Longitude:   r.number64("longitude", "lon", "lng"),
		}})
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(f, SheetFish, func(r row) {
		wb.Fish = append(wb.Fish, FishRow{
			Row: r.number,
			Fish: models.FishType{
				Name:        r.get("name"),
				Description: r.get("description"),
				PricePerKg:  r.money("price", "price_per_kg"),
				Family:      r.get("family"),
				HabitatType: r.get("habitat", "habitat_type"),
			},
			ZoneNames: splitNames(r.get("zones")),
		})
	})
	if err != nil {
		return nil, err
	}

	err = eachRow(f, SheetVessels, func(r row) {
		wb.Vessels = append(wb.Vessels, VesselRow{Row: r.number, Vessel: models.Vessel{
			Name:               r.get("name"),
			Description:        r.get("description"),
			RegistrationNumber: r.get("registration", "registration_number"),
			Capacity:           r.whole("capacity"),
			VesselType:         r.get("type", "vessel_type"),
			YearBuilt:          r.whole("year", "year_built"),
		}})
	})
	if err != nil {
		return nil, err
	}
	return wb, nil
}

// Import validates and stores the workbook in one transaction: zones first,
// then fish types linked to zones by name, then vessels.
func Import(db *gorm.DB, wb *Workbook, logger *slog.Logger) (Summary, error) {
	var summary Summary

	err := db.Transaction(func(tx *gorm.DB) error {
		zonesRepo := models.NewFishingZonesRepository(tx)
		fishRepo := models.NewFishTypesRepository(tx)
		vesselsRepo := models.NewVesselsRepository(tx)

		for _, zr := range wb.Zones {
			zone := zr.Zone
			if errs := zone.Validate(); errs.Any() {
				return &RowError{Sheet: SheetZones, Row: zr.Row, Fields: errs}
			}
			if err := zonesRepo.CreateFishingZone(&zone, nil); err != nil {
				return fmt.Errorf("sheet %s row %d: %w", SheetZones, zr.Row, err)
			}
			summary.Zones++
		}

		options, err := fishRepo.ZoneOptions()
		if err != nil {
			return err
		}
		zoneIDs := make(map[string]uint, len(options))
		for _, z := range options {
			zoneIDs[strings.ToLower(z.Name)] = z.ID
		}

		for _, fr := range wb.Fish {
			fish := fr.Fish
			errs := fish.Validate()
			ids := make([]uint, 0, len(fr.ZoneNames))
			for _, name := range fr.ZoneNames {
				id, ok := zoneIDs[strings.ToLower(name)]
				if !ok {
					errs.Add("zones", "Unknown zone: "+name)
					continue
				}
				ids = append(ids, id)
			}
			if errs.Any() {
				return &RowError{Sheet: SheetFish, Row: fr.Row, Fields: errs}
			}
			if err := fishRepo.CreateFishType(&fish, ids); err != nil {
				return fmt.Errorf("sheet %s row %d: %w", SheetFish, fr.Row, err)
			}
			summary.FishTypes++
			summary.Links += len(fish.Zones)
		}

		for _, vr := range wb.Vessels {
			vessel := vr.Vessel
			if errs := vessel.Validate(); errs.Any() {
				return &RowError{Sheet: SheetVessels, Row: vr.Row, Fields: errs}
			}
			if err := vesselsRepo.CreateVessel(&vessel); err != nil {
				return fmt.Errorf("sheet %s row %d: %w", SheetVessels, vr.Row, err)
			}
			summary.Vessels++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	logger.Info("workbook imported",
		"zones", summary.Zones,
		"fish_types", summary.FishTypes,
		"links", summary.Links,
		"vessels", summary.Vessels,
	)
	return summary, nil
}

// row reads cells by header name. Conversion failures are collected in errs.
type row struct {
	number  int
	cells   []string
	headers []string
	errs    models.FieldErrors
}

func eachRow(f *excelize.File, sheet string, fn func(r row)) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil
	}

	headers := rows[0]
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		r := row{number: i + 2, cells: cells, headers: headers, errs: models.FieldErrors{}}
		fn(r)
		if r.errs.Any() {
			return &RowError{Sheet: sheet, Row: r.number, Fields: r.errs}
		}
	}
	return nil
}

func (r row) get(names ...string) string {
	i := headerIndex(r.headers, names...)
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) number64(names ...string) float64 {
	raw := strings.ReplaceAll(r.get(names...), ",", ".")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		r.errs.Add(names[0], "Must be a number")
		return 0
	}
	return v
}

func (r row) money(names ...string) decimal.Decimal {
	raw := strings.ReplaceAll(r.get(names...), ",", ".")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		r.errs.Add(names[0], "Must be a number")
		return decimal.Zero
	}
	return d
}

func (r row) whole(names ...string) int {
	raw := r.get(names...)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.errs.Add(names[0], "Must be a whole number")
	}
	return n
}

func headerIndex(headers []string, candidates ...string) int {
	for i, h := range headers {
		hl := strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if hl == strings.ToLower(c) {
				return i
			}
		}
	}
	return -1
}

// splitNames splits a cell listing names separated by , ; or |, dropping
// blanks and case-insensitive duplicates.
func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.NewReplacer(";", ",", "|", ",").Replace(s)
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lp := strings.ToLower(p)
		if _, ok := seen[lp]; ok {
			continue
		}
		seen[lp] = struct{}{}
		out = append(out, p)
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
