package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/delivery/http/middleware"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/service"
	"medicare-backend/internal/usecase"
	"medicare-backend/pkg/response"
	"medicare-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
	validator    *validator.CustomValidator
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
		validator:    validator,
	}
}

func auditMeta(r *http.Request) service.AuditMeta {
	return service.AuditMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// ListUsers returns users filtered by role, status and search term
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := repository.UserFilter{
		Role:   r.URL.Query().Get("role"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}

	users, err := h.adminUsecase.GetUsers(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get users")
		return
	}

	totalPages := int((users.Total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, http.StatusOK, "Users retrieved successfully", users, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      users.Total,
		TotalPages: totalPages,
	})
}

// GetUser returns a single user by ID
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.adminUsecase.GetUser(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

// UpdateUser applies role, status, verification and hospital changes
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.adminUsecase.UpdateUser(r.Context(), actor, userID, &req, auditMeta(r))
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		case usecase.ErrCannotEditSelf:
			response.BadRequest(w, "Admins cannot change their own account here")
		case usecase.ErrHospitalNotFound:
			response.BadRequest(w, "Hospital not found")
		default:
			response.InternalServerError(w, "Failed to update user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User updated successfully", user)
}

// DeactivateUser suspends an account
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.adminUsecase.DeactivateUser(r.Context(), actor, userID, auditMeta(r))
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		case usecase.ErrCannotEditSelf:
			response.BadRequest(w, "Admins cannot change their own account here")
		default:
			response.InternalServerError(w, "Failed to deactivate user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User deactivated successfully", user)
}

// DeleteUser removes an account permanently
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.adminUsecase.DeleteUser(r.Context(), actor, userID, auditMeta(r)); err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		case usecase.ErrCannotEditSelf:
			response.BadRequest(w, "Admins cannot change their own account here")
		default:
			response.InternalServerError(w, "Failed to delete user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}

// ResetUserPassword records a forced password reset for a user
func (h *AdminHandler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.adminUsecase.ResetUserPassword(r.Context(), actor, userID, auditMeta(r)); err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to reset password")
		}
		return
	}

	response.Success(w, http.StatusOK, "Password reset initiated", nil)
}

// VerifyDoctor marks a doctor as verified and bookable
func (h *AdminHandler) VerifyDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	user, err := h.adminUsecase.VerifyDoctor(r.Context(), actor, doctorID, auditMeta(r))
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrNotADoctor:
			response.BadRequest(w, "User is not a doctor")
		default:
			response.InternalServerError(w, "Failed to verify doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor verified successfully", user)
}

// ListAppointments returns appointments across all users, newest first
func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := repository.AppointmentFilter{
		Status:   r.URL.Query().Get("status"),
		Date:     r.URL.Query().Get("date"),
		DoctorID: r.URL.Query().Get("doctor_id"),
		Page:     page,
		Limit:    limit,
	}

	appointments, err := h.adminUsecase.GetAppointments(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	totalPages := int((appointments.Total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully", appointments, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      appointments.Total,
		TotalPages: totalPages,
	})
}

// OverrideAppointmentStatus sets an appointment's status directly
func (h *AdminHandler) OverrideAppointmentStatus(w http.ResponseWriter, r *http.Request) {
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

	var req dto.OverrideAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.adminUsecase.OverrideAppointmentStatus(r.Context(), actor, appointmentID, &req, auditMeta(r))
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrInvalidStatus:
			response.BadRequest(w, "Invalid status")
		default:
			response.InternalServerError(w, "Failed to update appointment status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

// CancelAppointment cancels an appointment on behalf of the platform
func (h *AdminHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
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

	appointment, err := h.adminUsecase.CancelAppointment(r.Context(), actor, appointmentID, auditMeta(r))
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		default:
			response.InternalServerError(w, "Failed to cancel appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

// AppointmentStats returns appointment totals grouped by status
func (h *AdminHandler) AppointmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUsecase.GetAppointmentStats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointment stats")
		return
	}

	response.Success(w, http.StatusOK, "Appointment stats retrieved successfully", stats)
}

// GetSettings returns every system setting
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.adminUsecase.GetSettings(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get settings")
		return
	}

	response.Success(w, http.StatusOK, "Settings retrieved successfully", settings)
}

// UpdateSettings upserts one system setting by key
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req dto.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	setting, err := h.adminUsecase.UpdateSetting(r.Context(), actor, &req, auditMeta(r))
	if err != nil {
		response.InternalServerError(w, "Failed to update setting")
		return
	}

	response.Success(w, http.StatusOK, "Setting updated successfully", setting)
}

// ListAuditLogs returns the admin action trail
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := repository.AuditLogFilter{
		Action: r.URL.Query().Get("action"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}

	logs, err := h.adminUsecase.GetAuditLogs(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	totalPages := int((logs.Total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", logs, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      logs.Total,
		TotalPages: totalPages,
	})
}

// GetAuditLog returns one audit trail entry
func (h *AdminHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid audit log ID")
		return
	}

	entry, err := h.adminUsecase.GetAuditLog(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrAuditLogNotFound:
			response.NotFound(w, "Audit log not found")
		default:
			response.InternalServerError(w, "Failed to get audit log")
		}
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", entry)
}
