package zones

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fishingindustry/catalog/app/api"
	"github.com/fishingindustry/catalog/app/uploads"
	"github.com/fishingindustry/catalog/models"
)

type ZoneResponse struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	ImagePath   string       `json:"image_path"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	FishTypes   []models.Ref `json:"fish_types"`
}

type FormResponse struct {
	Zone                *ZoneResponse `json:"zone,omitempty"`
	SelectedFishTypeIDs []uint        `json:"selected_fish_type_ids"`
	FishTypes           []models.Ref  `json:"fish_types"`
}

// Input is the submitted form, echoed back when it is rejected.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	FishTypeIDs []uint `json:"fish_type_ids"`
}

type ZoneProvider interface {
	GetAllFishingZones() ([]models.FishingZone, error)
	GetByID(id uint) (*models.FishingZone, error)
	CreateFishingZone(zone *models.FishingZone, fishTypeIDs []uint) error
	UpdateFishingZone(zone *models.FishingZone, fishTypeIDs []uint) error
	DeleteFishingZone(id uint) (*models.FishingZone, error)
	FishTypeOptions() ([]models.Ref, error)
}

type ImageStore interface {
	Save(category uploads.Category, f *uploads.File) (string, error)
	Discard(path string)
}

type ZoneHandler struct {
	repo   ZoneProvider
	images ImageStore
	logger *slog.Logger
}

func NewZoneHandler(r ZoneProvider, images ImageStore, logger *slog.Logger) *ZoneHandler {
	return &ZoneHandler{repo: r, images: images, logger: logger}
}

func (h *ZoneHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	zones, err := h.repo.GetAllFishingZones()
	if err != nil {
		h.logger.Error("failed to list fishing zones", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to fetch fishing zones")
		return
	}

	response := make([]ZoneResponse, len(zones))
	for i := range zones {
		response[i] = toResponse(&zones[i])
	}
	api.OKResponse(w, response)
}

func (h *ZoneHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	zone, ok := h.lookup(w, r)
	if !ok {
		return
	}
	api.OKResponse(w, toResponse(zone))
}

func (h *ZoneHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	fish, err := h.repo.FishTypeOptions()
	if err != nil {
		h.logger.Error("failed to list fish type options", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to fetch fish types")
		return
	}
	api.OKResponse(w, FormResponse{SelectedFishTypeIDs: []uint{}, FishTypes: fish})
}

func (h *ZoneHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	zone, ok := h.lookup(w, r)
	if !ok {
		return
	}
	fish, err := h.repo.FishTypeOptions()
	if err != nil {
		h.logger.Error("failed to list fish type options", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to fetch fish types")
		return
	}

	resp := toResponse(zone)
	api.OKResponse(w, FormResponse{
		Zone:                &resp,
		SelectedFishTypeIDs: zone.FishTypeIDs(),
		FishTypes:           fish,
	})
}

func (h *ZoneHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	zone, input, image, errs, ok := h.readSubmission(w, r)
	if !ok {
		return
	}
	if err := uploads.Validate(image); err != nil {
		errs.Add("image", err.Error())
	}
	if errs.Any() {
		h.logger.Warn("rejected fishing zone", "errors", errs)
		api.WriteFormError(w, http.StatusUnprocessableEntity, "Validation failed", errs, input)
		return
	}

	path, err := h.images.Save(uploads.CategoryZone, image)
	if err != nil {
		h.storageFailure(w, err, input)
		return
	}
	zone.ImagePath = path

	if err := h.repo.CreateFishingZone(zone, input.FishTypeIDs); err != nil {
		h.images.Discard(path)
		h.logger.Error("failed to create fishing zone", "name", zone.Name, "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to create fishing zone",
			api.FormFailure("Could not save to the database"), input)
		return
	}

	h.logger.Info("fishing zone created", "id", zone.ID, "name", zone.Name)
	w.Header().Set("Location", fmt.Sprintf("/zones/%d", zone.ID))
	api.WriteJSON(w, http.StatusCreated, toResponse(zone))
}

func (h *ZoneHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.lookup(w, r)
	if !ok {
		return
	}
	zone, input, image, errs, ok := h.readSubmission(w, r)
	if !ok {
		return
	}
	if image != nil {
		if err := uploads.Validate(image); err != nil {
			errs.Add("image", err.Error())
		}
	}
	if errs.Any() {
		h.logger.Warn("rejected fishing zone update", "id", existing.ID, "errors", errs)
		api.WriteFormError(w, http.StatusUnprocessableEntity, "Validation failed", errs, input)
		return
	}

	zone.ID = existing.ID
	zone.ImagePath = existing.ImagePath
	if image != nil {
		path, err := h.images.Save(uploads.CategoryZone, image)
		if err != nil {
			h.storageFailure(w, err, input)
			return
		}
		zone.ImagePath = path
	}

	if err := h.repo.UpdateFishingZone(zone, input.FishTypeIDs); err != nil {
		if zone.ImagePath != existing.ImagePath {
			h.images.Discard(zone.ImagePath)
		}
		if errors.Is(err, models.ErrFishingZoneNotFound) {
			api.WriteError(w, http.StatusNotFound, "Fishing zone not found")
			return
		}
		h.logger.Error("failed to update fishing zone", "id", zone.ID, "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to update fishing zone",
			api.FormFailure("Could not save to the database"), input)
		return
	}
	if zone.ImagePath != existing.ImagePath {
		h.images.Discard(existing.ImagePath)
	}

	h.logger.Info("fishing zone updated", "id", zone.ID)
	api.OKResponse(w, toResponse(zone))
}

func (h *ZoneHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Fishing zone not found")
		return
	}

	deleted, err := h.repo.DeleteFishingZone(id)
	if err != nil {
		if errors.Is(err, models.ErrFishingZoneNotFound) {
			api.WriteError(w, http.StatusNotFound, "Fishing zone not found")
			return
		}
		h.logger.Error("failed to delete fishing zone", "id", id, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "Failed to delete fishing zone")
		return
	}
	h.images.Discard(deleted.ImagePath)

	h.logger.Info("fishing zone deleted", "id", id)
	api.OKResponse(w, map[string]string{
		"message": "Fishing zone deleted",
	})
}

// readSubmission parses the form and the optional image. It reports false
// after writing a 400 or 413 when the body cannot be read at all.
func (h *ZoneHandler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.FishingZone, Input, *uploads.File, models.FieldErrors, bool) {
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
		Latitude:    form.String("latitude"),
		Longitude:   form.String("longitude"),
		FishTypeIDs: form.IDs("fish_type_ids"),
	}
	zone := &models.FishingZone{
		Name:        input.Name,
		Description: input.Description,
		Latitude:    form.Float("latitude"),
		Longitude:   form.Float("longitude"),
	}

	errs := form.Errors
	errs.Merge(zone.Validate())
	return zone, input, image, errs, true
}

func (h *ZoneHandler) lookup(w http.ResponseWriter, r *http.Request) (*models.FishingZone, bool) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Fishing zone not found")
		return nil, false
	}

	zone, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrFishingZoneNotFound) {
			api.WriteError(w, http.StatusNotFound, "Fishing zone not found")
			return nil, false
		}
		h.logger.Error("failed to get fishing zone", "id", id, "error", err)
		api.WriteError(w, http.StatusInternalServerError, "Failed to retrieve fishing zone")
		return nil, false
	}
	return zone, true
}

func (h *ZoneHandler) storageFailure(w http.ResponseWriter, err error, input Input) {
	var se *uploads.StorageError
	if errors.As(err, &se) {
		h.logger.Error("failed to store zone image", "kind", se.Kind.String(), "path", se.Path, "error", se.Err)
	} else {
		h.logger.Error("failed to store zone image", "error", err)
	}
	api.WriteFormError(w, http.StatusInternalServerError, "Failed to store image",
		api.FormFailure("Could not save the image file"), input)
}

func toResponse(z *models.FishingZone) ZoneResponse {
	fish := z.FishTypes
	if fish == nil {
		fish = []models.Ref{}
	}
	return ZoneResponse{
		ID:          z.ID,
		Name:        z.Name,
		Description: z.Description,
		ImagePath:   z.ImagePath,
		Latitude:    z.Latitude,
		Longitude:   z.Longitude,
		FishTypes:   fish,
	}
}
