package handler

import (
	"encoding/json"
	"net/http"

	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/delivery/http/middleware"
	"medicare-backend/internal/usecase"
	"medicare-backend/pkg/response"
	"medicare-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type HospitalHandler struct {
	adminUsecase usecase.AdminUsecase
	validator    *validator.CustomValidator
}

func NewHospitalHandler(adminUsecase usecase.AdminUsecase, validator *validator.CustomValidator) *HospitalHandler {
	return &HospitalHandler{
		adminUsecase: adminUsecase,
		validator:    validator,
	}
}

// List returns all hospitals
func (h *HospitalHandler) List(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.adminUsecase.GetHospitals(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get hospitals")
		return
	}

	response.Success(w, http.StatusOK, "Hospitals retrieved successfully", hospitals)
}

// Get returns a single hospital by ID
func (h *HospitalHandler) Get(w http.ResponseWriter, r *http.Request) {
	hospitalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid hospital ID")
		return
	}

	hospital, err := h.adminUsecase.GetHospital(r.Context(), hospitalID)
	if err != nil {
		switch err {
		case usecase.ErrHospitalNotFound:
			response.NotFound(w, "Hospital not found")
		default:
			response.InternalServerError(w, "Failed to get hospital")
		}
		return
	}

	response.Success(w, http.StatusOK, "Hospital retrieved successfully", hospital)
}

// Create registers a new hospital
func (h *HospitalHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req dto.CreateHospitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	hospital, err := h.adminUsecase.CreateHospital(r.Context(), actor, &req, auditMeta(r))
	if err != nil {
		response.InternalServerError(w, "Failed to create hospital")
		return
	}

	response.Success(w, http.StatusCreated, "Hospital created successfully", hospital)
}

// Update edits hospital details
func (h *HospitalHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	hospitalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid hospital ID")
		return
	}

	var req dto.UpdateHospitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	hospital, err := h.adminUsecase.UpdateHospital(r.Context(), actor, hospitalID, &req, auditMeta(r))
	if err != nil {
		switch err {
		case usecase.ErrHospitalNotFound:
			response.NotFound(w, "Hospital not found")
		default:
			response.InternalServerError(w, "Failed to update hospital")
		}
		return
	}

	response.Success(w, http.StatusOK, "Hospital updated successfully", hospital)
}

// Delete removes a hospital
func (h *HospitalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	hospitalID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid hospital ID")
		return
	}

	if err := h.adminUsecase.DeleteHospital(r.Context(), actor, hospitalID, auditMeta(r)); err != nil {
		switch err {
		case usecase.ErrHospitalNotFound:
			response.NotFound(w, "Hospital not found")
		default:
			response.InternalServerError(w, "Failed to delete hospital")
		}
		return
	}

	response.Success(w, http.StatusOK, "Hospital deleted successfully", nil)
}
