package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AvailabilitySlotRequest struct {
	Day         string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	IsAvailable bool   `json:"is_available"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`

	// Doctor-only fields
	Specialization  string                    `json:"specialization,omitempty" validate:"omitempty,max=100"`
	Experience      int                       `json:"experience,omitempty" validate:"omitempty,gte=0"`
	ConsultationFee float64                   `json:"consultation_fee,omitempty" validate:"omitempty,gte=0"`
	Availability    []AvailabilitySlotRequest `json:"availability,omitempty" validate:"omitempty,dive"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest carries self-service profile edits. Doctor-only fields
// are ignored for other roles.
type UpdateProfileRequest struct {
	Name            *string                   `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Specialization  *string                   `json:"specialization,omitempty" validate:"omitempty,max=100"`
	Experience      *int                      `json:"experience,omitempty" validate:"omitempty,gte=0,lte=50"`
	ConsultationFee *float64                  `json:"consultation_fee,omitempty" validate:"omitempty,gte=0"`
	Availability    []AvailabilitySlotRequest `json:"availability,omitempty" validate:"omitempty,dive"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID              uuid.UUID                 `json:"id"`
	Name            string                    `json:"name"`
	Email           string                    `json:"email"`
	Role            string                    `json:"role"`
	Status          string                    `json:"status"`
	Specialization  string                    `json:"specialization,omitempty"`
	Experience      int                       `json:"experience,omitempty"`
	ConsultationFee float64                   `json:"consultation_fee,omitempty"`
	Availability    []AvailabilitySlotRequest `json:"availability,omitempty"`
	IsVerified      bool                      `json:"is_verified"`
	HospitalID      *uuid.UUID                `json:"hospital_id,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// UserBrief is the trimmed identity embedded in appointment and chat payloads
type UserBrief struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}
