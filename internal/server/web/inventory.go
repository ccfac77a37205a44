package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/storage"
	"github.com/dmitrijs2005/dealership/internal/server/validation"
	"github.com/gorilla/mux"
)

type detailView struct {
	Vehicle  *models.Vehicle
	LoggedIn bool
	Saved    bool
}

type vehicleFormView struct {
	Action          string
	Submit          string
	Form            validation.VehicleForm
	Classifications []models.Classification
}

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func formID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get(name)), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) vehiclesByClassification(w http.ResponseWriter, r *http.Request) {
	classID, ok := pathID(r, "classification_id")
	if !ok {
		s.notFound(w, r)
		return
	}

	c, err := s.inventory.Classification(r.Context(), classID)
	if errors.Is(err, common.ErrorNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	vehicles, err := s.inventory.VehiclesByClassification(r.Context(), classID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "inventory/classification", page{
		Title: c.Name + " Vehicles",
		Data:  vehicles,
	})
}

func (s *Server) vehicleDetail(w http.ResponseWriter, r *http.Request) {
	invID, ok := pathID(r, "inv_id")
	if !ok {
		s.notFound(w, r)
		return
	}

	v, err := s.inventory.Vehicle(r.Context(), invID)
	if errors.Is(err, common.ErrorNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	view := detailView{Vehicle: v}
	if id := auth.FromContext(r.Context()); id.IsAuthenticated() {
		view.LoggedIn = true
		view.Saved, err = s.favorites.IsFavorite(r.Context(), id.AccountID(), v.ID)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
	}

	s.render(w, r, http.StatusOK, "inventory/detail", page{Title: v.Title(), Data: view})
}

func (s *Server) inventoryManagement(w http.ResponseWriter, r *http.Request) {
	list, err := s.inventory.Classifications(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "inventory/management", page{Title: "Inventory Management", Data: list})
}

func (s *Server) addClassificationPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "inventory/add-classification", page{Title: "Add Classification", Data: ""})
}

func (s *Server) addClassification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	name := r.PostForm.Get(validation.FieldClassification)
	c, err := s.inventory.AddClassification(r.Context(), name)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			s.render(w, r, http.StatusBadRequest, "inventory/add-classification", page{
				Title: "Add Classification", Errors: verrs, Data: strings.TrimSpace(name),
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.redirectWithNotice(w, r, "/inv/", fmt.Sprintf("Classification %q was added successfully.", c.Name))
}

func (s *Server) vehicleForm(w http.ResponseWriter, r *http.Request, status int, title string, form validation.VehicleForm, errs validation.Errors) {
	list, err := s.inventory.Classifications(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	view := vehicleFormView{Action: "/inv/add-inventory", Submit: "Add Vehicle", Form: form, Classifications: list}
	if form.ID != "" {
		view.Action, view.Submit = "/inv/update/", "Update Vehicle"
	}
	s.render(w, r, status, "inventory/vehicle-form", page{Title: title, Errors: errs, Data: view})
}

func readVehicleForm(r *http.Request) validation.VehicleForm {
	f := r.PostForm
	return validation.VehicleForm{
		ID:               f.Get(validation.FieldInvID),
		ClassificationID: f.Get(validation.FieldClassID),
		Make:             f.Get(validation.FieldMake),
		Model:            f.Get(validation.FieldModel),
		Year:             f.Get(validation.FieldYear),
		Description:      f.Get(validation.FieldDescription),
		Image:            f.Get(validation.FieldImage),
		Thumbnail:        f.Get(validation.FieldThumbnail),
		Price:            f.Get(validation.FieldPrice),
		Miles:            f.Get(validation.FieldMiles),
		Color:            f.Get(validation.FieldColor),
	}
}

func (s *Server) addVehiclePage(w http.ResponseWriter, r *http.Request) {
	s.vehicleForm(w, r, http.StatusOK, "Add Inventory Item", validation.VehicleForm{
		Image:     "/images/vehicles/no-image.png",
		Thumbnail: "/images/vehicles/no-image-tn.png",
	}, nil)
}

func (s *Server) addVehicle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	form := readVehicleForm(r)
	form.ID = ""

	if _, err := s.inventory.AddVehicle(r.Context(), form); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			s.vehicleForm(w, r, http.StatusBadRequest, "Add Inventory Item", form, verrs)
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.redirectWithNotice(w, r, "/inv/", "Inventory item added successfully.")
}

func (s *Server) inventoryJSON(w http.ResponseWriter, r *http.Request) {
	classID, ok := pathID(r, "classification_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid classification id"})
		return
	}

	vehicles, err := s.inventory.VehiclesByClassification(r.Context(), classID)
	if err != nil {
		s.logger.Error(r.Context(), "list inventory failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (s *Server) editVehiclePage(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadVehicle(w, r)
	if !ok {
		return
	}
	s.vehicleForm(w, r, http.StatusOK, "Edit "+v.Title(), validation.FormFromVehicle(v), nil)
}

func (s *Server) updateVehicle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	form := readVehicleForm(r)
	v, err := s.inventory.UpdateVehicle(r.Context(), form)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			title := "Edit " + strings.TrimSpace(form.Make+" "+form.Model)
			s.vehicleForm(w, r, http.StatusBadRequest, title, form, verrs)
		case errors.Is(err, common.ErrorNotFound):
			s.notFound(w, r)
		default:
			s.serverError(w, r, err)
		}
		return
	}

	s.redirectWithNotice(w, r, "/inv/", fmt.Sprintf("The %s was successfully updated.", v.Title()))
}

func (s *Server) deleteVehiclePage(w http.ResponseWriter, r *http.Request) {
	v, ok := s.loadVehicle(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "inventory/delete", page{Title: "Delete " + v.Title(), Data: v})
}

func (s *Server) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r)
		return
	}

	invID, ok := formID(r, validation.FieldInvID)
	if !ok {
		s.notFound(w, r)
		return
	}

	err := s.inventory.DeleteVehicle(r.Context(), invID)
	switch {
	case err == nil:
		s.redirectWithNotice(w, r, "/inv/", "The deletion was successful.")
	case errors.Is(err, common.ErrorNotFound):
		s.notFound(w, r)
	default:
		s.serverError(w, r, err)
	}
}

// loadVehicle resolves {inv_id} and writes the error response itself when
// it returns false.
func (s *Server) loadVehicle(w http.ResponseWriter, r *http.Request) (*models.Vehicle, bool) {
	invID, ok := pathID(r, "inv_id")
	if !ok {
		s.notFound(w, r)
		return nil, false
	}

	v, err := s.inventory.Vehicle(r.Context(), invID)
	if errors.Is(err, common.ErrorNotFound) {
		s.notFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return v, true
}

// imageUploadURL hands the browser a presigned PUT so image bytes go
// straight to object storage.
func (s *Server) imageUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil || req.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}

	up, err := s.images.PresignUpload(r.Context(), req.Filename, req.ContentType)
	if errors.Is(err, storage.ErrDisabled) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "image uploads are not configured"})
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "presign upload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, up)
}
