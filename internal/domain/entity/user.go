package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// User status constants
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
	UserStatusPending   = "pending"
)

// User represents a platform account. Doctor-specific fields are kept on the
// same record, mirroring the single users collection.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:text;not null" json:"-"`
	Role     string    `gorm:"type:varchar(20);not null;default:'patient';index" json:"role"`
	Status   string    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	// Doctor-only attributes
	Specialization  string            `gorm:"type:varchar(100);index" json:"specialization,omitempty"`
	Experience      int               `json:"experience,omitempty"`
	ConsultationFee float64           `json:"consultation_fee,omitempty"`
	Availability    AvailabilitySlots `gorm:"type:jsonb" json:"availability,omitempty"`
	IsVerified      bool              `gorm:"not null;default:false" json:"is_verified"`
	HospitalID      *uuid.UUID        `gorm:"type:uuid;index" json:"hospital_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AvailabilitySlot is one weekly availability window of a doctor.
type AvailabilitySlot struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// AvailabilitySlots is stored as a JSONB column.
type AvailabilitySlots []AvailabilitySlot

// Value implements driver.Valuer
func (a AvailabilitySlots) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *AvailabilitySlots) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	var result []AvailabilitySlot
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*a = AvailabilitySlots(result)
	return nil
}
