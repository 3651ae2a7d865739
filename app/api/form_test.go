package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fishingindustry/catalog/app/api/apitest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm(t *testing.T) {
	t.Run("Multipart body", func(t *testing.T) {
		req := apitest.NewMultipartRequest(t, "POST", "/fish", map[string][]string{
			"name":         {"  Cod "},
			"price_per_kg": {"3,50"},
			"zone_ids":     {"1", "2,3"},
		}, nil)

		form, err := ParseForm(req)
		require.NoError(t, err)
		assert.Equal(t, "Cod", form.String("name"))
		assert.True(t, decimal.RequireFromString("3.5").Equal(form.Decimal("price_per_kg")))
		assert.Equal(t, []uint{1, 2, 3}, form.IDs("zone_ids"))
		assert.False(t, form.Errors.Any())
	})

	t.Run("Url-encoded body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/vessels", strings.NewReader("capacity=12&year_built=abc&latitude=1.5"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		form, err := ParseForm(req)
		require.NoError(t, err)
		assert.Equal(t, 12, form.Int("capacity"))
		assert.Equal(t, 0, form.Int("year_built"))
		assert.Equal(t, 1.5, form.Float("latitude"))
		assert.Equal(t, []string{"Must be a whole number"}, form.Errors["year_built"])
	})

	t.Run("Non-finite numbers", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/zones", strings.NewReader("latitude=NaN&longitude=%2BInf&depth=1e400&ok=-12,5"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		form, err := ParseForm(req)
		require.NoError(t, err)
		assert.Zero(t, form.Float("latitude"))
		assert.Zero(t, form.Float("longitude"))
		assert.Zero(t, form.Float("depth"))
		assert.Equal(t, -12.5, form.Float("ok"))
		assert.Equal(t, []string{"Must be a number"}, form.Errors["latitude"])
		assert.Equal(t, []string{"Must be a number"}, form.Errors["longitude"])
		assert.Equal(t, []string{"Must be a number"}, form.Errors["depth"])
		assert.NotContains(t, form.Errors, "ok")
	})

	t.Run("Missing and invalid ids", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/zones", strings.NewReader("fish_type_ids=4&fish_type_ids=x&fish_type_ids=0"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		form, err := ParseForm(req)
		require.NoError(t, err)
		assert.Equal(t, []uint{}, form.IDs("zone_ids"))
		assert.Equal(t, []uint{4}, form.IDs("fish_type_ids"))
		assert.Len(t, form.Errors["fish_type_ids"], 2)
	})
}

func TestPathID(t *testing.T) {
	testCases := []struct {
		value      string
		expectedID uint
		expectedOK bool
	}{
		{value: "7", expectedID: 7, expectedOK: true},
		{value: "0"},
		{value: "-1"},
		{value: "abc"},
		{value: ""},
	}

	for _, tc := range testCases {
		t.Run("id="+tc.value, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/fish/x", nil)
			req.SetPathValue("id", tc.value)

			id, ok := PathID(req, "id")
			assert.Equal(t, tc.expectedID, id)
			assert.Equal(t, tc.expectedOK, ok)
		})
	}
}

func TestWriteFormError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFormError(rec, http.StatusUnprocessableEntity, "Validation failed",
		FormFailure("Could not save"), map[string]string{"name": "Cod"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
		Input  map[string]string   `json:"input"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, []string{"Could not save"}, resp.Fields[GeneralField])
	assert.Equal(t, "Cod", resp.Input["name"])
}

func TestWriteJSON(t *testing.T) {
	t.Run("Encodable value", func(t *testing.T) {
		rec := httptest.NewRecorder()

		err := WriteJSON(rec, http.StatusCreated, map[string]int{"id": 7})

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id":7}`, rec.Body.String())
	})

	t.Run("Value that cannot be encoded", func(t *testing.T) {
		rec := httptest.NewRecorder()

		err := WriteJSON(rec, http.StatusOK, map[string]float64{"latitude": math.NaN()})

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
	})
}
