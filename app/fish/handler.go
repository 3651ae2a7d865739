package fish

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fishingindustry/catalog/app/api"
	"github.com/fishingindustry/catalog/app/uploads"
	"github.com/fishingindustry/catalog/models"
)

type Response struct {
	Total     int            `json:"total"`
	FishTypes []FishTypeView `json:"fish_types"`
}

type FishTypeView struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	PricePerKg  float64      `json:"price_per_kg"`
	Family      string       `json:"family"`
	HabitatType string       `json:"habitat_type"`
	ImagePath   string       `json:"image_path"`
	Zones       []models.Ref `json:"zones"`
}

// FormResponse carries what a client needs to render the create or edit form.
type FormResponse struct {
	FishType        *FishTypeView `json:"fish_type,omitempty"`
	SelectedZoneIDs []uint        `json:"selected_zone_ids"`
	Zones           []models.Ref  `json:"zones"`
}

// Input is the submitted form, echoed back when it is rejected.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PricePerKg  string `json:"price_per_kg"`
	Family      string `json:"family"`
	HabitatType string `json:"habitat_type"`
	ZoneIDs     []uint `json:"zone_ids"`
}

type FishTypeProvider interface {
	GetFilteredFishTypes(offset, limit int, filters models.FishTypeFilters) ([]models.FishType, int64, error)
	GetByID(id uint) (*models.FishType, error)
	CreateFishType(fish *models.FishType, zoneIDs []uint) error
	UpdateFishType(fish *models.FishType, zoneIDs []uint) error
	DeleteFishType(id uint) (*models.FishType, error)
	ZoneOptions() ([]models.Ref, error)
}

type ImageStore interface {
	Save(category uploads.Category, f *uploads.File) (string, error)
	Discard(path string)
}

type FishHandler struct {
	repo   FishTypeProvider
	images ImageStore
	logger *slog.Logger
}

func NewFishHandler(r FishTypeProvider, images ImageStore, logger *slog.Logger) *FishHandler {
	return &FishHandler{
		repo:   r,
		images: images,
		logger: logger,
	}
}

func (h *FishHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	var filters models.FishTypeFilters
	if zStr := r.URL.Query().Get("zone"); zStr != "" {
		if z, err := strconv.ParseUint(zStr, 10, 64); err == nil {
			zone := uint(z)
			filters.ZoneID = &zone
		}
	}
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			filters.PriceLessThan = &val
		}
	}

	res, total, err := h.repo.GetFilteredFishTypes(offset, limit, filters)
	if err != nil {
		h.logger.Error("failed to list fish types", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to get fish types")
		return
	}

	fish := make([]FishTypeView, len(res))
	for i := range res {
		fish[i] = toView(&res[i])
	}

	api.OKResponse(w, Response{
		Total:     int(total),
		FishTypes: fish,
	})
}

func (h *FishHandler) HandleGetFishType(w http.ResponseWriter, r *http.Request) {
	fish, ok := h.lookup(w, r)
	if !ok {
		return
	}
	api.OKResponse(w, toView(fish))
}

// HandleNewForm lists the zones a new fish type can be linked to.
func (h *FishHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	zones, err := h.repo.ZoneOptions()
	if err != nil {
		h.logger.Error("failed to list zone options", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to get fishing zones")
		return
	}
	api.OKResponse(w, FormResponse{SelectedZoneIDs: []uint{}, Zones: zones})
}

// HandleEditForm returns the stored values, the selected zones and all zone options.
func (h *FishHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	fish, ok := h.lookup(w, r)
	if !ok {
		return
	}
	zones, err := h.repo.ZoneOptions()
	if err != nil {
		h.logger.Error("failed to list zone options", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to get fishing zones")
		return
	}

	view := toView(fish)
	api.OKResponse(w, FormResponse{
		FishType:        &view,
		SelectedZoneIDs: fish.ZoneIDs(),
		Zones:           zones,
	})
}

func (h *FishHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	fish, input, image, errs, ok := h.readSubmission(w, r)
	if !ok {
		return
	}
	if err := uploads.Validate(image); err != nil {
		errs.Add("image", err.Error())
	}
	if errs.Any() {
		h.logger.Warn("rejected fish type", "errors", errs)
		api.WriteFormError(w, http.StatusUnprocessableEntity, "Validation failed", errs, input)
		return
	}

	path, err := h.images.Save(uploads.CategoryFish, image)
	if err != nil {
		h.storageFailure(w, err, input)
		return
	}
	fish.ImagePath = path

	if err := h.repo.CreateFishType(fish, input.ZoneIDs); err != nil {
		h.images.Discard(path)
		h.logger.Error("failed to create fish type", "name", fish.Name, "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to create fish type",
			api.FormFailure("Could not save to the database"), input)
		return
	}

	h.logger.Info("fish type created", "id", fish.ID, "name", fish.Name)
	w.Header().Set("Location", fmt.Sprintf("/fish/%d", fish.ID))
	api.WriteJSON(w, http.StatusCreated, toView(fish))
}

// HandleUpdate overwrites every field. The image is replaced only when one
// is uploaded; a missing zone_ids field unlinks all zones.
func (h *FishHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.lookup(w, r)
	if !ok {
		return
	}
	fish, input, image, errs, ok := h.readSubmission(w, r)
	if !ok {
		return
	}
	if image != nil {
		if err := uploads.Validate(image); err != nil {
			errs.Add("image", err.Error())
		}
	}
	if errs.Any() {
		h.logger.Warn("rejected fish type update", "id", existing.ID, "errors", errs)
		api.WriteFormError(w, http.StatusUnprocessableEntity, "Validation failed", errs, input)
		return
	}

	fish.ID = existing.ID
	fish.ImagePath = existing.ImagePath
	if image != nil {
		path, err := h.images.Save(uploads.CategoryFish, image)
		if err != nil {
			h.storageFailure(w, err, input)
			return
		}
		fish.ImagePath = path
	}

	if err := h.repo.UpdateFishType(fish, input.ZoneIDs); err != nil {
		if fish.ImagePath != existing.ImagePath {
			h.images.Discard(fish.ImagePath)
		}
		if errors.Is(err, models.ErrFishTypeNotFound) {
			api.WriteError(w, http.StatusNotFound, "Fish type not found")
			return
		}
		h.logger.Error("failed to update fish type", "id", fish.ID, "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to update fish type",
			api.FormFailure("Could not save to the database"), input)
		return
	}
	if fish.ImagePath != existing.ImagePath {
		h.images.Discard(existing.ImagePath)
	}

	h.logger.Info("fish type updated", "id", fish.ID)
	api.OKResponse(w, toView(fish))
}

func (h *FishHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Fish type not found")
		return
	}

	deleted, err := h.repo.DeleteFishType(id)
	if err != nil {
		if errors.Is(err, models.ErrFishTypeNotFound) {
			api.WriteError(w, http.StatusNotFound, "Fish type not found")
			return
		}
		h.logger.Error("failed to delete fish type", "id", id, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete fish type")
		return
	}
	h.images.Discard(deleted.ImagePath)

	h.logger.Info("fish type deleted", "id", id)
	api.OKResponse(w, map[string]string{
		"message": "Fish type deleted",
	})
}

// lookup resolves the {id} path value, writing the error response itself
// when it cannot.
func (h *FishHandler) lookup(w http.ResponseWriter, r *http.Request) (*models.FishType, bool) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Fish type not found")
		return nil, false
	}

	fish, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrFishTypeNotFound) {
			api.WriteError(w, http.StatusNotFound, "Fish type not found")
			return nil, false
		}
		h.logger.Error("failed to get fish type", "id", id, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "Failed to retrieve fish type")
		return nil, false
	}
	return fish, true
}

func (h *FishHandler) storageFailure(w http.ResponseWriter, err error, input Input) {
	var se *uploads.StorageError
	if errors.As(err, &se) {
		h.logger.Error("failed to store fish image", "kind", se.Kind.String(), "path", se.Path, "error", se.Err)
	} else {
		h.logger.Error("failed to store fish image", "error", err)
	}
	api.WriteFormError(w, http.StatusInternalServerError, "Failed to store image",
		api.FormFailure("Could not save the image file"), input)
}

// readSubmission parses the form and the optional image. It reports false
// after writing a 400 or 413 when the body cannot be read at all.
func (h *FishHandler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.FishType, Input, *uploads.File, models.FieldErrors, bool) {
	form, err := api.ParseForm(r)
	if err != nil {
		api.WriteBodyError(w, err)
		return nil, Input{}, nil, nil, false
	}
	image, err := uploads.FromRequest(r, "image")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid image upload")
		return nil, Input{}, nil, nil, false
	}

	input := Input{
		Name:        form.String("name"),
		Description: form.String("description"),
		PricePerKg:  form.String("price_per_kg"),
		Family:      form.String("family"),
		HabitatType: form.String("habitat_type"),
		ZoneIDs:     form.IDs("zone_ids"),
	}
	fish := &models.FishType{
		Name:        input.Name,
		Description: input.Description,
		PricePerKg:  form.Decimal("price_per_kg"),
		Family:      input.Family,
		HabitatType: input.HabitatType,
	}

	errs := form.Errors
	errs.Merge(fish.Validate())
	return fish, input, image, errs, true
}

func toView(f *models.FishType) FishTypeView {
	zones := f.Zones
	if zones == nil {
		zones = []models.Ref{}
	}
	return FishTypeView{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		PricePerKg:  f.PricePerKg.InexactFloat64(),
		Family:      f.Family,
		HabitatType: f.HabitatType,
		ImagePath:   f.ImagePath,
		Zones:       zones,
	}
}
