package entity

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Setting categories
const (
	SettingCategoryGeneral       = "general"
	SettingCategorySecurity      = "security"
	SettingCategoryNotifications = "notifications"
	SettingCategoryLimits        = "limits"
)

// SystemSetting is one admin-editable configuration entry. The value is an
// arbitrary JSON document keyed by a unique name.
type SystemSetting struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Key         string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	Value       JSONValue  `gorm:"type:jsonb;not null" json:"value"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Category    string     `gorm:"type:varchar(20)" json:"category,omitempty"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

// JSONValue stores any JSON document, not just an object.
type JSONValue []byte

// Value implements driver.Valuer
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return nil, nil
	}
	return []byte(v), nil
}

// Scan implements sql.Scanner
func (v *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		*v = append((*v)[0:0], data...)
	case string:
		*v = JSONValue(data)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return nil
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *JSONValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}
