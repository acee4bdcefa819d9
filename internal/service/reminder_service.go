package service

import (
	"context"
	"time"

	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Reminder windows before the appointment start. A reminder fires when the
// start falls inside [window, window+sweepSpan) relative to now, so each
// hourly sweep catches it exactly once.
const (
	soonWindow  = time.Hour
	aheadWindow = 24 * time.Hour
	sweepSpan   = time.Hour
)

// Reminder is one due notification produced by a sweep
type Reminder struct {
	AppointmentID string
	RecipientID   string
	Recipient     string
	CounterpartID string
	Counterpart   string
	StartsAt      time.Time
	Window        time.Duration
}

// ReminderService periodically scans confirmed appointments and logs
// reminders for both parties at 24 hours and 1 hour before the start.
type ReminderService struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	cron            *cron.Cron
}

func NewReminderService(log *logrus.Logger, appointmentRepo repository.AppointmentRepository) *ReminderService {
	return &ReminderService{
		log:             log,
		appointmentRepo: appointmentRepo,
		cron:            cron.New(),
	}
}

// Start registers the sweep on the given cron schedule and begins running it
func (s *ReminderService) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Sweep(ctx, time.Now().UTC())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Infof("Reminder sweep scheduled: %q", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *ReminderService) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep loads confirmed appointments and logs every reminder due at the given
// instant
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) {
	appointments, err := s.appointmentRepo.FindByStatus(ctx, entity.AppointmentStatusConfirmed)
	if err != nil {
		s.log.Warnf("Reminder sweep failed to load appointments: %+v", err)
		return
	}

	reminders := DueReminders(appointments, now)
	for _, r := range reminders {
		s.log.WithFields(logrus.Fields{
			"appointment_id": r.AppointmentID,
			"recipient_id":   r.RecipientID,
			"recipient":      r.Recipient,
			"counterpart":    r.Counterpart,
			"starts_at":      r.StartsAt.Format(time.RFC3339),
			"window":         r.Window.String(),
		}).Info("Appointment reminder due")
	}

	if len(reminders) > 0 {
		s.log.Infof("Reminder sweep done: %d reminders from %d confirmed appointments", len(reminders), len(appointments))
	}
}

// DueReminders computes the reminders due at the given instant. Both the
// patient and the doctor get one per window.
func DueReminders(appointments []entity.Appointment, now time.Time) []Reminder {
	var due []Reminder

	for i := range appointments {
		appointment := &appointments[i]
		startsAt, err := appointment.StartsAt()
		if err != nil {
			continue
		}

		for _, window := range []time.Duration{soonWindow, aheadWindow} {
			lead := startsAt.Sub(now)
			if lead < window || lead >= window+sweepSpan {
				continue
			}

			due = append(due,
				Reminder{
					AppointmentID: appointment.ID.String(),
					RecipientID:   appointment.PatientID.String(),
					Recipient:     appointment.Patient.Name,
					CounterpartID: appointment.DoctorID.String(),
					Counterpart:   appointment.Doctor.Name,
					StartsAt:      startsAt,
					Window:        window,
				},
				Reminder{
					AppointmentID: appointment.ID.String(),
					RecipientID:   appointment.DoctorID.String(),
					Recipient:     appointment.Doctor.Name,
					CounterpartID: appointment.PatientID.String(),
					Counterpart:   appointment.Patient.Name,
					StartsAt:      startsAt,
					Window:        window,
				},
			)
		}
	}

	return due
}
