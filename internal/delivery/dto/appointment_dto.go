package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID  string   `json:"doctor_id" validate:"required,uuid"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string   `json:"time" validate:"required"`
	Reason    string   `json:"reason" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=in-person online"`
	Fee       *float64 `json:"fee,omitempty" validate:"omitempty,gte=0"`
	Documents []string `json:"documents,omitempty"`
}

// UpdateAppointmentRequest is the single entry point for status changes, note
// edits and rescheduling. All fields are optional.
type UpdateAppointmentRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
	Date   *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time   *string `json:"time,omitempty"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	Patient   UserBrief `json:"patient"`
	Doctor    UserBrief `json:"doctor"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	Type      string    `json:"type"`
	Documents []string  `json:"documents,omitempty"`
	Fee       *float64  `json:"fee,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AvailableSlotsResponse struct {
	AvailableSlots []string `json:"available_slots"`
}
