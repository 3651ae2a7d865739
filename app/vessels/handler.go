package vessels

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fishingindustry/catalog/app/api"
	"github.com/fishingindustry/catalog/app/uploads"
	"github.com/fishingindustry/catalog/models"
)

type VesselResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	RegistrationNumber string `json:"registration_number"`
	Capacity           int    `json:"capacity"`
	VesselType         string `json:"vessel_type"`
	YearBuilt          int    `json:"year_built"`
	ImagePath          string `json:"image_path"`
}

type Input struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	RegistrationNumber string `json:"registration_number"`
	Capacity           string `json:"capacity"`
	VesselType         string `json:"vessel_type"`
	YearBuilt          string `json:"year_built"`
}

type VesselProvider interface {
	GetAllVessels() ([]models.Vessel, error)
	GetByID(id uint) (*models.Vessel, error)
	CreateVessel(vessel *models.Vessel) error
	UpdateVessel(vessel *models.Vessel) error
	DeleteVessel(id uint) (*models.Vessel, error)
}

type ImageStore interface {
	Save(category uploads.Category, f *uploads.File) (string, error)
	Discard(path string)
}

type VesselHandler struct {
	repo   VesselProvider
	images ImageStore
	logger *slog.Logger
}

func NewVesselHandler(r VesselProvider, images ImageStore, logger *slog.Logger) *VesselHandler {
	return &VesselHandler{repo: r, images: images, logger: logger}
}

func (h *VesselHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	vessels, err := h.repo.GetAllVessels()
	if err != nil {
		h.logger.Error("failed to list vessels", "error", err)
		api.WriteError(w, http.StatusInternalServerError, "failed to fetch vessels")
		return
	}

	response := make([]VesselResponse, len(vessels))
	for i := range vessels {
		response[i] = toResponse(&vessels[i])
	}
	api.OKResponse(w, response)
}

func (h *VesselHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Vessel not found")
		return
	}

	vessel, err := h.repo.GetByID(id)
	if err != nil {
		h.repoFailure(w, err, "failed to get vessel", "Failed to retrieve vessel")
		return
	}
	api.OKResponse(w, toResponse(vessel))
}

func (h *VesselHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	vessel, input, image, errs, ok := h.readSubmission(w, r)
	if !ok {
		return
	}
	if err := uploads.Validate(image); err != nil {
		errs.Add("image", err.Error())
	}
	if errs.Any() {
		api.WriteFormError(w, http.StatusUnprocessableEntity, "Validation failed", errs, input)
		return
	}

	path, err := h.images.Save(uploads.CategoryVessel, image)
	if err != nil {
		h.logger.Error("failed to store vessel image", "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to store image",
			api.FormFailure("Could not save the image file"), input)
		return
	}
	vessel.ImagePath = path

	if err := h.repo.CreateVessel(vessel); err != nil {
		h.images.Discard(path)
		h.logger.Error("failed to create vessel", "name", vessel.Name, "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to create vessel",
			api.FormFailure("Could not save to the database"), input)
		return
	}

	h.logger.Info("vessel created", "id", vessel.ID, "name", vessel.Name)
	w.Header().Set("Location", fmt.Sprintf("/vessels/%d", vessel.ID))
	api.WriteJSON(w, http.StatusCreated, toResponse(vessel))
}

func (h *VesselHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Vessel not found")
		return
	}
	existing, err := h.repo.GetByID(id)
	if err != nil {
		h.repoFailure(w, err, "failed to get vessel", "Failed to retrieve vessel")
		return
	}

	vessel, input, image, errs, ok := h.readSubmission(w, r)
	if !ok {
		return
	}
	if image != nil {
		if err := uploads.Validate(image); err != nil {
			errs.Add("image", err.Error())
		}
	}
	if errs.Any() {
		api.WriteFormError(w, http.StatusUnprocessableEntity, "Validation failed", errs, input)
		return
	}

	vessel.ID = existing.ID
	vessel.ImagePath = existing.ImagePath
	if image != nil {
		path, err := h.images.Save(uploads.CategoryVessel, image)
		if err != nil {
			h.logger.Error("failed to store vessel image", "id", id, "error", err)
			api.WriteFormError(w, http.StatusInternalServerError, "Failed to store image",
				api.FormFailure("Could not save the image file"), input)
			return
		}
		vessel.ImagePath = path
	}

	if err := h.repo.UpdateVessel(vessel); err != nil {
		if vessel.ImagePath != existing.ImagePath {
			h.images.Discard(vessel.ImagePath)
		}
		if errors.Is(err, models.ErrVesselNotFound) {
			api.WriteError(w, http.StatusNotFound, "Vessel not found")
			return
		}
		h.logger.Error("failed to update vessel", "id", id, "error", err)
		api.WriteFormError(w, http.StatusInternalServerError, "Failed to update vessel",
			api.FormFailure("Could not save to the database"), input)
		return
	}
	if vessel.ImagePath != existing.ImagePath {
		h.images.Discard(existing.ImagePath)
	}

	h.logger.Info("vessel updated", "id", id)
	api.OKResponse(w, toResponse(vessel))
}

func (h *VesselHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.WriteError(w, http.StatusNotFound, "Vessel not found")
		return
	}

	deleted, err := h.repo.DeleteVessel(id)
	if err != nil {
		h.repoFailure(w, err, "failed to delete vessel", "Failed to delete vessel")
		return
	}
	h.images.Discard(deleted.ImagePath)

	h.logger.Info("vessel deleted", "id", id)
	api.OKResponse(w, map[string]string{
		"message": "Vessel deleted",
	})
}

func (h *VesselHandler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.Vessel, Input, *uploads.File, models.FieldErrors, bool) {
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
		Name:               form.String("name"),
		Description:        form.String("description"),
		RegistrationNumber: form.String("registration_number"),
		Capacity:           form.String("capacity"),
		VesselType:         form.String("vessel_type"),
		YearBuilt:          form.String("year_built"),
	}
	vessel := &models.Vessel{
		Name:               input.Name,
		Description:        input.Description,
		RegistrationNumber: input.RegistrationNumber,
		Capacity:           form.Int("capacity"),
		VesselType:         input.VesselType,
		YearBuilt:          form.Int("year_built"),
	}

	errs := form.Errors
	errs.Merge(vessel.Validate())
	return vessel, input, image, errs, true
}

func (h *VesselHandler) repoFailure(w http.ResponseWriter, err error, logMsg, userMsg string) {
	if errors.Is(err, models.ErrVesselNotFound) {
		api.WriteError(w, http.StatusNotFound, "Vessel not found")
		return
	}
	h.logger.Error(logMsg, "error", err)
	api.WriteError(w, http.StatusInternalServerError, userMsg)
}

func toResponse(v *models.Vessel) VesselResponse {
	return VesselResponse{
		ID:                 v.ID,
		Name:               v.Name,
		Description:        v.Description,
		RegistrationNumber: v.RegistrationNumber,
		Capacity:           v.Capacity,
		VesselType:         v.VesselType,
		YearBuilt:          v.YearBuilt,
		ImagePath:          v.ImagePath,
	}
}
