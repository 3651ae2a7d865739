package models

// Ref is an id/name pair of a related record, used for display and for
// the selectable options of a form.
type Ref struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func refIDs(refs []Ref) []uint {
	ids := make([]uint, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

// FieldErrors maps a form field to its human-readable messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// Merge copies all messages of other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}
