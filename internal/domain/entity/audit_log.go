package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of an admin action. Write-only from the
// core's perspective; only admin tooling reads it back.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	AdminID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"admin_id"`
	Details   JSON       `gorm:"type:jsonb" json:"details,omitempty"`
	IPAddress string     `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent string     `gorm:"type:text" json:"user_agent,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User  *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Admin User  `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
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

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionUserUpdated          = "USER_UPDATED"
	AuditActionUserDeactivated      = "USER_DEACTIVATED"
	AuditActionUserDeleted          = "USER_DELETED"
	AuditActionPasswordResetForced  = "PASSWORD_RESET_FORCED"
	AuditActionDoctorVerified       = "DOCTOR_VERIFIED"
	AuditActionDoctorSuspended      = "DOCTOR_SUSPENDED"
	AuditActionHospitalCreated      = "HOSPITAL_CREATED"
	AuditActionHospitalUpdated      = "HOSPITAL_UPDATED"
	AuditActionHospitalDeleted      = "HOSPITAL_DELETED"
	AuditActionAppointmentOverride  = "APPOINTMENT_STATUS_UPDATED"
	AuditActionAppointmentCancelled = "APPOINTMENT_CANCELLED"
	AuditActionSettingsUpdated      = "SYSTEM_SETTINGS_UPDATED"
)
