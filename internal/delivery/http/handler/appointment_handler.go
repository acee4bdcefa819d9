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

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// List returns the appointments of the authenticated user
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	appointments, err := h.appointmentUsecase.GetMyAppointments(r.Context(), actor)
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// Create books a new appointment for the authenticated patient
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), actor, &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDoctor:
			response.BadRequest(w, "Invalid doctor")
		case usecase.ErrInvalidDateFormat, usecase.ErrInvalidTimeFormat,
			usecase.ErrReasonTooShort, usecase.ErrInvalidAppointmentType,
			usecase.ErrPastAppointment:
			response.BadRequest(w, err.Error())
		case usecase.ErrSlotTaken:
			response.Conflict(w, "Doctor is not available at this time")
		case usecase.ErrSlotBusy:
			response.Conflict(w, "Slot is currently being booked, please retry")
		default:
			response.InternalServerError(w, "Failed to create appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

// Update applies status changes, note edits and rescheduling
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.UpdateAppointment(r.Context(), actor, appointmentID, &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrAppointmentNotOwned:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrOnlyDoctorCanConfirm, usecase.ErrOnlyPatientCanCancel, usecase.ErrOnlyPatientCanReschedule:
			response.Forbidden(w, err.Error())
		case usecase.ErrInvalidStatus, usecase.ErrNotesTooLong,
			usecase.ErrInvalidDateFormat, usecase.ErrInvalidTimeFormat,
			usecase.ErrPastAppointment:
			response.BadRequest(w, err.Error())
		case usecase.ErrSlotTaken:
			response.Conflict(w, "Doctor is not available at this time")
		case usecase.ErrSlotBusy:
			response.Conflict(w, "Slot is currently being booked, please retry")
		default:
			response.InternalServerError(w, "Failed to update appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

// Delete removes an appointment record
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	if err := h.appointmentUsecase.DeleteAppointment(r.Context(), actor, appointmentID); err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrOnlyPatientCanDelete:
			response.Forbidden(w, "Only the patient can delete an appointment")
		default:
			response.InternalServerError(w, "Failed to delete appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment deleted successfully", nil)
}

// AvailableSlots returns the doctor's free hourly slots for a date
func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	slots, err := h.appointmentUsecase.GetAvailableSlots(r.Context(), doctorID, vars["date"])
	if err != nil {
		switch err {
		case usecase.ErrInvalidDoctor:
			response.BadRequest(w, "Invalid doctor")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to get available slots")
		}
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}
