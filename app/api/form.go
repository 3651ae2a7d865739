package api

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fishingindustry/catalog/models"
	"github.com/shopspring/decimal"
)

// maxMemory is how much of a multipart body is kept in memory; the rest
// spills to temporary files.
const maxMemory = 8 << 20

// Form reads typed values out of a submitted form and collects the
// conversion errors per field.
type Form struct {
	Values url.Values
	Errors models.FieldErrors
}

// ParseForm accepts both multipart and url-encoded bodies.
func ParseForm(r *http.Request) (*Form, error) {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, err
	}
	return &Form{Values: r.Form, Errors: models.FieldErrors{}}, nil
}

func (f *Form) String(key string) string {
	return strings.TrimSpace(f.Values.Get(key))
}

// Int parses key as an integer. An empty value is zero.
func (f *Form) Int(key string) int {
	raw := f.String(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.Errors.Add(key, "Must be a whole number")
		return 0
	}
	return n
}

// Float parses key as a finite number, accepting a decimal comma.
func (f *Form) Float(key string) float64 {
	raw := strings.ReplaceAll(f.String(key), ",", ".")
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.Errors.Add(key, "Must be a number")
		return 0
	}
	return v
}

func (f *Form) Decimal(key string) decimal.Decimal {
	raw := strings.ReplaceAll(f.String(key), ",", ".")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.Errors.Add(key, "Must be a number")
		return decimal.Zero
	}
	return d
}

// IDs collects the ids submitted under key, either as repeated values or
// as a comma separated list. A missing key yields an empty slice.
func (f *Form) IDs(key string) []uint {
	ids := []uint{}
	for _, value := range f.Values[key] {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				f.Errors.Add(key, "Invalid id: "+part)
				continue
			}
			ids = append(ids, uint(id))
		}
	}
	return ids
}

// PathID reads a positive integer path parameter.
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
