package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"medicare-backend/internal/converter"
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/infrastructure/lock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	minReasonLength = 10
	maxNotesLength  = 500

	// Bookable grid: hourly slots from 09:00 through 17:00
	firstSlotHour = 9
	lastSlotHour  = 17
)

var (
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrAppointmentNotOwned      = errors.New("appointment does not belong to you")
	ErrInvalidDoctor            = errors.New("invalid doctor")
	ErrReasonTooShort           = errors.New("reason must be at least 10 characters")
	ErrPastAppointment          = errors.New("appointment must be in the future")
	ErrInvalidStatus            = errors.New("invalid status")
	ErrInvalidAppointmentType   = errors.New("invalid appointment type")
	ErrNotesTooLong             = errors.New("notes too long")
	ErrInvalidDateFormat        = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat        = errors.New("invalid time format, use HH:MM")
	ErrSlotTaken                = errors.New("doctor is not available at this time")
	ErrSlotBusy                 = errors.New("slot is currently being booked, please retry")
	ErrOnlyDoctorCanConfirm     = errors.New("only doctors can confirm appointments")
	ErrOnlyPatientCanCancel     = errors.New("only patients can request cancellation")
	ErrOnlyPatientCanReschedule = errors.New("only patients can request rescheduling")
	ErrOnlyPatientCanDelete     = errors.New("only the patient can delete an appointment")
)

type AppointmentUsecase interface {
	GetMyAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	CreateAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) error
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	locker          lock.Locker
	notifier        Notifier
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	locker lock.Locker,
	notifier Notifier,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		locker:          locker,
		notifier:        notifier,
	}
}

// GetMyAppointments returns appointments where the actor is the patient or
// the doctor, ordered by date then time
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByUser(ctx, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for user %s: %+v", actor.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// CreateAppointment books a slot for the acting patient. The slot-conflict
// check runs inside a per-(doctor,date,time) lock so two concurrent requests
// cannot both pass it.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, ErrInvalidDoctor
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, ErrInvalidTimeFormat
	}

	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) < minReasonLength {
		return nil, ErrReasonTooShort
	}

	appointmentType := entity.AppointmentType(req.Type)
	if !appointmentType.IsValid() {
		return nil, ErrInvalidAppointmentType
	}

	startsAt, err := entity.CombineDateTime(date, req.Time)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if !startsAt.After(time.Now().UTC()) {
		return nil, ErrPastAppointment
	}

	doctor, err := u.userRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.IsDoctor() {
		return nil, ErrInvalidDoctor
	}

	var created *entity.Appointment

	lockKey := slotLockKey(doctorID, req.Date, req.Time)
	err = u.locker.WithLock(ctx, lockKey, func(lockCtx context.Context) error {
		existing, err := u.appointmentRepo.FindConfirmedBySlot(lockCtx, doctorID, date, req.Time)
		if err != nil {
			return fmt.Errorf("check confirmed slot: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		// Always enters the lifecycle as pending, regardless of input
		appointment := &entity.Appointment{
			PatientID: actor.ID,
			DoctorID:  doctorID,
			Date:      date,
			Time:      req.Time,
			Reason:    reason,
			Status:    entity.AppointmentStatusPending,
			Type:      appointmentType,
			Documents: req.Documents,
			Fee:       req.Fee,
		}
		if err := u.appointmentRepo.Create(lockCtx, appointment); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appointment
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to create appointment for slot %s: %+v", lockKey, err)
		return nil, err
	}

	full, err := u.appointmentRepo.FindByID(ctx, created.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", created.ID, err)
		full = created
	}

	responseDTO := converter.AppointmentToResponse(full)
	u.emitToBothParties(full, EventAppointmentCreated, responseDTO)

	u.log.Infof("Appointment created: id=%s, doctor=%s, slot=%s %s", full.ID, doctorID, req.Date, req.Time)
	return responseDTO, nil
}

// UpdateAppointment is the single entry point for status changes, note edits
// and rescheduling. A reschedule always forces the status back to pending,
// even when a status value is passed in the same call.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if actor.ID != appointment.PatientID && actor.ID != appointment.DoctorID {
		return nil, ErrAppointmentNotOwned
	}

	var newStatus entity.AppointmentStatus
	if req.Status != nil {
		newStatus = entity.AppointmentStatus(*req.Status)
		if !newStatus.IsValid() {
			return nil, ErrInvalidStatus
		}
	}
	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > maxNotesLength {
		return nil, ErrNotesTooLong
	}

	newDate := appointment.Date
	newTime := appointment.Time
	if req.Date != nil {
		newDate, err = time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
	}
	if req.Time != nil {
		if _, err := time.Parse("15:04", *req.Time); err != nil {
			return nil, ErrInvalidTimeFormat
		}
		newTime = *req.Time
	}

	rescheduled := !newDate.Equal(appointment.Date) || newTime != appointment.Time
	if rescheduled {
		startsAt, err := entity.CombineDateTime(newDate, newTime)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		if !startsAt.After(time.Now().UTC()) {
			return nil, ErrPastAppointment
		}
		if actor.ID != appointment.PatientID {
			return nil, ErrOnlyPatientCanReschedule
		}
	}

	// A reschedule discards any status in the same call, so the status role
	// gates only apply when the slot is unchanged.
	if !rescheduled && req.Status != nil {
		if newStatus == entity.AppointmentStatusConfirmed && actor.ID != appointment.DoctorID {
			return nil, ErrOnlyDoctorCanConfirm
		}
		if newStatus == entity.AppointmentStatusCancelled && actor.ID != appointment.PatientID {
			return nil, ErrOnlyPatientCanCancel
		}
	}

	apply := func(ctx context.Context) error {
		if rescheduled {
			// Reschedule wins over any status passed in the same call
			appointment.Status = entity.AppointmentStatusPending
		} else if req.Status != nil {
			appointment.Status = newStatus
		}
		if req.Notes != nil {
			appointment.Notes = strings.TrimSpace(*req.Notes)
		}
		appointment.Date = newDate
		appointment.Time = newTime

		return u.appointmentRepo.Update(ctx, appointment)
	}

	// Confirming claims the slot, so it runs under the same per-slot lock as
	// creation and re-checks the confirmed-slot invariant inside it.
	if !rescheduled && req.Status != nil && newStatus == entity.AppointmentStatusConfirmed {
		lockKey := slotLockKey(appointment.DoctorID, appointment.Date.Format("2006-01-02"), appointment.Time)
		err = u.locker.WithLock(ctx, lockKey, func(lockCtx context.Context) error {
			existing, err := u.appointmentRepo.FindConfirmedBySlot(lockCtx, appointment.DoctorID, appointment.Date, appointment.Time)
			if err != nil {
				return fmt.Errorf("check confirmed slot: %w", err)
			}
			if existing != nil && existing.ID != appointment.ID {
				return ErrSlotTaken
			}
			return apply(lockCtx)
		})
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
	} else {
		err = apply(ctx)
	}
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	full, err := u.appointmentRepo.FindByID(ctx, appointment.ID)
	if err != nil || full == nil {
		full = appointment
	}

	responseDTO := converter.AppointmentToResponse(full)
	u.emitToBothParties(full, EventAppointmentUpdated, responseDTO)

	u.log.Infof("Appointment updated: id=%s, status=%s", full.ID, full.Status)
	return responseDTO, nil
}

// DeleteAppointment removes an appointment. Patient-only. No fan-out is
// emitted for deletions; the other party sees it on their next full refresh.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if actor.ID != appointment.PatientID {
		return ErrOnlyPatientCanDelete
	}

	if err := u.appointmentRepo.Delete(ctx, appointmentID); err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", appointmentID, err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%s", appointmentID)
	return nil
}

// GetAvailableSlots returns the fixed hourly grid minus slots already
// confirmed for the doctor on that date
func (u *appointmentUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	doctor, err := u.userRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.IsDoctor() {
		return nil, ErrInvalidDoctor
	}

	parsedDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	bookedTimes, err := u.appointmentRepo.FindConfirmedTimes(ctx, doctorID, parsedDate)
	if err != nil {
		u.log.Warnf("Failed to find confirmed times for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	booked := make(map[string]struct{}, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = struct{}{}
	}

	available := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slot := fmt.Sprintf("%02d:00", h)
		if _, taken := booked[slot]; !taken {
			available = append(available, slot)
		}
	}

	return &dto.AvailableSlotsResponse{AvailableSlots: available}, nil
}

// emitToBothParties sends the event plus a dashboard-refresh ping to the
// patient's and the doctor's personal rooms. The emits are independent calls
// with no atomicity across them.
func (u *appointmentUsecase) emitToBothParties(appointment *entity.Appointment, event string, payload interface{}) {
	for _, userID := range []uuid.UUID{appointment.PatientID, appointment.DoctorID} {
		u.notifier.EmitToRoom(UserRoom(userID), event, payload)
	}
	for _, userID := range []uuid.UUID{appointment.PatientID, appointment.DoctorID} {
		u.notifier.EmitToRoom(UserRoom(userID), EventDashboardUpdate, nil)
	}
}

func slotLockKey(doctorID uuid.UUID, date, timeOfDay string) string {
	return fmt.Sprintf("slot:%s:%s:%s", doctorID, date, timeOfDay)
}
