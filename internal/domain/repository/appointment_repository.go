package repository

import (
	"context"
	"time"

	"medicare-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentFilter narrows appointment listings for the admin views
type AppointmentFilter struct {
	Status   string
	Date     string
	DoctorID string
	Page     int
	Limit    int
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	// FindAll returns appointments across all users, newest slot first. Admin
	// oversight only.
	FindAll(ctx context.Context, filter AppointmentFilter) ([]entity.Appointment, int64, error)
	// FindByUser returns appointments where the user is the patient or the
	// doctor, ordered by date then time.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Appointment, error)
	// FindConfirmedBySlot returns the confirmed appointment occupying the
	// (doctor, date, time) slot, or nil.
	FindConfirmedBySlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (*entity.Appointment, error)
	// FindConfirmedTimes returns the time-of-day strings of confirmed
	// appointments for the doctor on the given date.
	FindConfirmedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
	// ExistsConfirmedBetween reports whether a confirmed appointment links the
	// (patient, doctor) pair.
	ExistsConfirmedBetween(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error)
	// FindByStatus returns appointments in the given status with patient and
	// doctor preloaded. Used by the reminder sweep.
	FindByStatus(ctx context.Context, status entity.AppointmentStatus) ([]entity.Appointment, error)
	// CountByStatus groups the appointment count per lifecycle status.
	CountByStatus(ctx context.Context) (map[entity.AppointmentStatus]int64, error)
	// CountOnDate counts appointments on the given calendar date.
	CountOnDate(ctx context.Context, date time.Time) (int64, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
