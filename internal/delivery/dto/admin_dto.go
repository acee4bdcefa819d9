package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateUserRequest struct {
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=admin doctor patient"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active suspended pending"`
	IsVerified *bool   `json:"is_verified,omitempty"`
	HospitalID *string `json:"hospital_id,omitempty" validate:"omitempty,uuid"`
}

type OverrideAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled rejected"`
}

type UpdateSettingRequest struct {
	Key         string          `json:"key" validate:"required,max=100"`
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty" validate:"omitempty,oneof=general security notifications limits"`
}

// Response DTOs

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

type AuditLogResponse struct {
	ID        int64                  `json:"id"`
	Action    string                 `json:"action"`
	User      *UserBrief             `json:"user,omitempty"`
	Admin     UserBrief              `json:"admin"`
	Details   map[string]interface{} `json:"details,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}

// AdminAppointmentListResponse is the paginated cross-user appointment view
type AdminAppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
}

type AppointmentStatsResponse struct {
	Total    int64            `json:"total"`
	Today    int64            `json:"today"`
	ByStatus map[string]int64 `json:"by_status"`
}

type SettingResponse struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	UpdatedBy   *uuid.UUID      `json:"updated_by,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SettingListResponse struct {
	Settings []SettingResponse `json:"settings"`
	Total    int               `json:"total"`
}

type HospitalResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Departments []string  `json:"departments,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HospitalListResponse struct {
	Hospitals []HospitalResponse `json:"hospitals"`
	Total     int                `json:"total"`
}

type CreateHospitalRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Address     string   `json:"address" validate:"required"`
	Departments []string `json:"departments,omitempty"`
	Phone       string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateHospitalRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Address     *string  `json:"address,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
