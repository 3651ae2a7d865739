package models

import (
	"slices"

	"gorm.io/gorm"
)

// FishZoneLink is one edge of the fish type / fishing zone relation.
// Both sides of the relation are read from this table.
type FishZoneLink struct {
	FishTypeID    uint `gorm:"primaryKey;autoIncrement:false"`
	FishingZoneID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (FishZoneLink) TableName() string {
	return "fish_type_fishing_zones"
}

// LinkDelta holds the edges to add and remove to move from one id set to another.
type LinkDelta struct {
	Add    []uint
	Remove []uint
}

func (d LinkDelta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// DiffIDs returns target - current as additions and current - target as
// removals. Duplicate ids are ignored; both slices come back sorted.
func DiffIDs(current, target []uint) LinkDelta {
	cur := idSet(current)
	tgt := idSet(target)

	var d LinkDelta
	for id := range tgt {
		if _, ok := cur[id]; !ok {
			d.Add = append(d.Add, id)
		}
	}
	for id := range cur {
		if _, ok := tgt[id]; !ok {
			d.Remove = append(d.Remove, id)
		}
	}
	slices.Sort(d.Add)
	slices.Sort(d.Remove)
	return d
}

func idSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// linkSide describes the relation as seen from one of its two ends.
type linkSide struct {
	column      string // owner's column in the link table
	otherColumn string
	otherTable  string
}

var (
	fishSide = linkSide{column: "fish_type_id", otherColumn: "fishing_zone_id", otherTable: "fishing_zones"}
	zoneSide = linkSide{column: "fishing_zone_id", otherColumn: "fish_type_id", otherTable: "fish_types"}
)

func (s linkSide) link(owner, other uint) FishZoneLink {
	if s == fishSide {
		return FishZoneLink{FishTypeID: owner, FishingZoneID: other}
	}
	return FishZoneLink{FishTypeID: other, FishingZoneID: owner}
}

// existing narrows ids to those present in the related table.
// Unknown ids are dropped without error.
func (s linkSide) existing(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Table(s.otherTable).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (s linkSide) current(tx *gorm.DB, owner uint) ([]uint, error) {
	var ids []uint
	if err := tx.Model(&FishZoneLink{}).
		Where(s.column+" = ?", owner).
		Pluck(s.otherColumn, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// sync makes owner's edge set equal to target ∩ existing ids and reports
// what changed. It must run inside the caller's transaction.
func (s linkSide) sync(tx *gorm.DB, owner uint, target []uint) (LinkDelta, error) {
	target, err := s.existing(tx, target)
	if err != nil {
		return LinkDelta{}, err
	}
	current, err := s.current(tx, owner)
	if err != nil {
		return LinkDelta{}, err
	}

	delta := DiffIDs(current, target)
	if len(delta.Remove) > 0 {
		if err := tx.
			Where(s.column+" = ? AND "+s.otherColumn+" IN ?", owner, delta.Remove).
			Delete(&FishZoneLink{}).Error; err != nil {
			return LinkDelta{}, err
		}
	}
	if len(delta.Add) > 0 {
		links := make([]FishZoneLink, len(delta.Add))
		for i, other := range delta.Add {
			links[i] = s.link(owner, other)
		}
		if err := tx.Create(&links).Error; err != nil {
			return LinkDelta{}, err
		}
	}
	return delta, nil
}

func (s linkSide) clear(tx *gorm.DB, owner uint) error {
	return tx.Where(s.column+" = ?", owner).Delete(&FishZoneLink{}).Error
}

// refs loads the related id/name pairs for every owner, ordered by name.
func (s linkSide) refs(tx *gorm.DB, owners []uint) (map[uint][]Ref, error) {
	out := make(map[uint][]Ref, len(owners))
	if len(owners) == 0 {
		return out, nil
	}

	var rows []struct {
		Owner uint
		ID    uint
		Name  string
	}
	err := tx.Table("fish_type_fishing_zones AS l").
		Select("l."+s.column+" AS owner, o.id AS id, o.name AS name").
		Joins("JOIN "+s.otherTable+" o ON o.id = l."+s.otherColumn).
		Where("l."+s.column+" IN ?", owners).
		Order("o.name, o.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.Owner] = append(out[r.Owner], Ref{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// options lists every record of the related table as a selectable ref.
func (s linkSide) options(tx *gorm.DB) ([]Ref, error) {
	var refs []Ref
	if err := tx.Table(s.otherTable).Select("id, name").Order("name, id").Scan(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}
