package entity

import (
	"time"

	"github.com/google/uuid"
)

// Hospital represents a facility doctors can be attached to
type Hospital struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Address     string     `gorm:"type:text;not null" json:"address"`
	Departments StringList `gorm:"type:jsonb" json:"departments,omitempty"`
	Phone       string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Email       string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctors []User `gorm:"foreignKey:HospitalID" json:"doctors,omitempty"`
}

func (Hospital) TableName() string {
	return "hospitals"
}
