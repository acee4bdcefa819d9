package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appointmentFixture struct {
	patient         *entity.User
	doctor          *entity.User
	otherPatient    *entity.User
	userRepo        *fakeUserRepo
	appointmentRepo *fakeAppointmentRepo
	notifier        *recordingNotifier
	usecase         AppointmentUsecase
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()

	patient := &entity.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: entity.RolePatient, Status: entity.UserStatusActive}
	doctor := &entity.User{ID: uuid.New(), Name: "Dr. Bob", Email: "bob@example.com", Role: entity.RoleDoctor, Status: entity.UserStatusActive, IsVerified: true}
	otherPatient := &entity.User{ID: uuid.New(), Name: "Carol", Email: "carol@example.com", Role: entity.RolePatient, Status: entity.UserStatusActive}

	userRepo := newFakeUserRepo(patient, doctor, otherPatient)
	appointmentRepo := newFakeAppointmentRepo()
	notifier := &recordingNotifier{}

	return &appointmentFixture{
		patient:         patient,
		doctor:          doctor,
		otherPatient:    otherPatient,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		usecase:         NewAppointmentUsecase(testLogger(), userRepo, appointmentRepo, &fakeLocker{}, notifier),
	}
}

func tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
}

func validCreateRequest(doctorID uuid.UUID) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		DoctorID: doctorID.String(),
		Date:     tomorrow(),
		Time:     "10:00",
		Reason:   "persistent headache for a week",
		Type:     "in-person",
	}
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("always starts pending", func(t *testing.T) {
		f := newAppointmentFixture(t)

		appointment, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)
		assert.Equal(t, string(entity.AppointmentStatusPending), appointment.Status)
	})

	t.Run("rejects short reason", func(t *testing.T) {
		f := newAppointmentFixture(t)
		req := validCreateRequest(f.doctor.ID)
		req.Reason = "  ache   " // under 10 chars after trimming

		_, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), req)
		assert.ErrorIs(t, err, ErrReasonTooShort)
	})

	t.Run("rejects past slot", func(t *testing.T) {
		f := newAppointmentFixture(t)
		req := validCreateRequest(f.doctor.ID)
		req.Date = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

		_, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), req)
		assert.ErrorIs(t, err, ErrPastAppointment)
	})

	t.Run("rejects booking with a non-doctor", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.otherPatient.ID))
		assert.ErrorIs(t, err, ErrInvalidDoctor)

		_, err = f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(uuid.New()))
		assert.ErrorIs(t, err, ErrInvalidDoctor)
	})

	t.Run("rejects malformed time and type", func(t *testing.T) {
		f := newAppointmentFixture(t)

		req := validCreateRequest(f.doctor.ID)
		req.Time = "25:99"
		_, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), req)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat)

		req = validCreateRequest(f.doctor.ID)
		req.Type = "telepathy"
		_, err = f.usecase.CreateAppointment(ctx, actorFor(f.patient), req)
		assert.ErrorIs(t, err, ErrInvalidAppointmentType)
	})

	t.Run("conflicts with a confirmed slot", func(t *testing.T) {
		f := newAppointmentFixture(t)

		created, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)

		stored := f.appointmentRepo.appointments[created.ID]
		stored.Status = entity.AppointmentStatusConfirmed

		_, err = f.usecase.CreateAppointment(ctx, actorFor(f.otherPatient), validCreateRequest(f.doctor.ID))
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("pending bookings do not block the slot", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)

		_, err = f.usecase.CreateAppointment(ctx, actorFor(f.otherPatient), validCreateRequest(f.doctor.ID))
		assert.NoError(t, err, "only confirmed appointments occupy a slot")
	})

	t.Run("busy lock surfaces as retryable conflict", func(t *testing.T) {
		f := newAppointmentFixture(t)
		req := validCreateRequest(f.doctor.ID)
		lockKey := fmt.Sprintf("slot:%s:%s:%s", f.doctor.ID, req.Date, req.Time)
		contended := NewAppointmentUsecase(testLogger(), f.userRepo, f.appointmentRepo, &fakeLocker{held: map[string]bool{lockKey: true}}, f.notifier)

		_, err := contended.CreateAppointment(ctx, actorFor(f.patient), req)
		assert.ErrorIs(t, err, ErrSlotBusy)
	})

	t.Run("notifies both parties", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)

		created := f.notifier.byEvent(EventAppointmentCreated)
		require.Len(t, created, 2)
		rooms := []string{created[0].Room, created[1].Room}
		assert.Contains(t, rooms, UserRoom(f.patient.ID))
		assert.Contains(t, rooms, UserRoom(f.doctor.ID))

		assert.Len(t, f.notifier.byEvent(EventDashboardUpdate), 2)
	})
}

func TestUpdateAppointment(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *appointmentFixture) uuid.UUID {
		t.Helper()
		appointment, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)
		return appointment.ID
	}

	strPtr := func(s string) *string { return &s }

	t.Run("unknown appointment", func(t *testing.T) {
		f := newAppointmentFixture(t)
		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.patient), uuid.New(), &dto.UpdateAppointmentRequest{})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("third parties cannot touch it", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.otherPatient), id, &dto.UpdateAppointmentRequest{Notes: strPtr("sneaky")})
		assert.ErrorIs(t, err, ErrAppointmentNotOwned)
	})

	t.Run("only the doctor confirms", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.patient), id, &dto.UpdateAppointmentRequest{Status: strPtr("confirmed")})
		assert.ErrorIs(t, err, ErrOnlyDoctorCanConfirm)

		updated, err := f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), id, &dto.UpdateAppointmentRequest{Status: strPtr("confirmed")})
		require.NoError(t, err)
		assert.Equal(t, string(entity.AppointmentStatusConfirmed), updated.Status)
	})

	t.Run("only the patient cancels", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), id, &dto.UpdateAppointmentRequest{Status: strPtr("cancelled")})
		assert.ErrorIs(t, err, ErrOnlyPatientCanCancel)

		updated, err := f.usecase.UpdateAppointment(ctx, actorFor(f.patient), id, &dto.UpdateAppointmentRequest{Status: strPtr("cancelled")})
		require.NoError(t, err)
		assert.Equal(t, string(entity.AppointmentStatusCancelled), updated.Status)
	})

	t.Run("confirm re-checks the slot", func(t *testing.T) {
		f := newAppointmentFixture(t)
		first := create(t, f)

		second, err := f.usecase.CreateAppointment(ctx, actorFor(f.otherPatient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)

		_, err = f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), first, &dto.UpdateAppointmentRequest{Status: strPtr("confirmed")})
		require.NoError(t, err)

		_, err = f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), second.ID, &dto.UpdateAppointmentRequest{Status: strPtr("confirmed")})
		assert.ErrorIs(t, err, ErrSlotTaken, "at most one confirmed appointment per slot")
	})

	t.Run("reschedule forces pending and beats a status in the same call", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), id, &dto.UpdateAppointmentRequest{Status: strPtr("confirmed")})
		require.NoError(t, err)

		newTime := "14:00"
		updated, err := f.usecase.UpdateAppointment(ctx, actorFor(f.patient), id, &dto.UpdateAppointmentRequest{
			Time:   &newTime,
			Status: strPtr("confirmed"),
		})
		require.NoError(t, err)
		assert.Equal(t, string(entity.AppointmentStatusPending), updated.Status)
		assert.Equal(t, "14:00", updated.Time)
	})

	t.Run("only the patient reschedules", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		newTime := "15:00"
		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), id, &dto.UpdateAppointmentRequest{Time: &newTime})
		assert.ErrorIs(t, err, ErrOnlyPatientCanReschedule)
	})

	t.Run("rejects oversized notes", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		notes := strings.Repeat("n", 501)
		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), id, &dto.UpdateAppointmentRequest{Notes: &notes})
		assert.ErrorIs(t, err, ErrNotesTooLong)
	})

	t.Run("emits update and dashboard events", func(t *testing.T) {
		f := newAppointmentFixture(t)
		id := create(t, f)

		before := f.notifier.count()
		_, err := f.usecase.UpdateAppointment(ctx, actorFor(f.doctor), id, &dto.UpdateAppointmentRequest{Status: strPtr("confirmed")})
		require.NoError(t, err)

		assert.Len(t, f.notifier.byEvent(EventAppointmentUpdated), 2)
		assert.Equal(t, before+4, f.notifier.count())
	})
}

func TestDeleteAppointment(t *testing.T) {
	ctx := context.Background()

	f := newAppointmentFixture(t)
	appointment, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
	require.NoError(t, err)

	err = f.usecase.DeleteAppointment(ctx, actorFor(f.doctor), appointment.ID)
	assert.ErrorIs(t, err, ErrOnlyPatientCanDelete)

	before := f.notifier.count()
	err = f.usecase.DeleteAppointment(ctx, actorFor(f.patient), appointment.ID)
	require.NoError(t, err)
	assert.Empty(t, f.appointmentRepo.appointments)
	assert.Equal(t, before, f.notifier.count(), "deletion has no fan-out")

	err = f.usecase.DeleteAppointment(ctx, actorFor(f.patient), appointment.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("full grid when nothing is confirmed", func(t *testing.T) {
		f := newAppointmentFixture(t)

		slots, err := f.usecase.GetAvailableSlots(ctx, f.doctor.ID, tomorrow())
		require.NoError(t, err)
		assert.Equal(t, []string{
			"09:00", "10:00", "11:00", "12:00", "13:00",
			"14:00", "15:00", "16:00", "17:00",
		}, slots.AvailableSlots)
	})

	t.Run("confirmed slots drop out", func(t *testing.T) {
		f := newAppointmentFixture(t)

		created, err := f.usecase.CreateAppointment(ctx, actorFor(f.patient), validCreateRequest(f.doctor.ID))
		require.NoError(t, err)
		f.appointmentRepo.appointments[created.ID].Status = entity.AppointmentStatusConfirmed

		slots, err := f.usecase.GetAvailableSlots(ctx, f.doctor.ID, tomorrow())
		require.NoError(t, err)
		assert.NotContains(t, slots.AvailableSlots, "10:00")
		assert.Len(t, slots.AvailableSlots, 8)
	})

	t.Run("validates inputs", func(t *testing.T) {
		f := newAppointmentFixture(t)

		_, err := f.usecase.GetAvailableSlots(ctx, f.otherPatient.ID, tomorrow())
		assert.ErrorIs(t, err, ErrInvalidDoctor)

		_, err = f.usecase.GetAvailableSlots(ctx, f.doctor.ID, "31-12-2025")
		assert.ErrorIs(t, err, ErrInvalidDateFormat)
	})
}
