package usecase

import (
	"context"
	"testing"
	"time"

	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	admin           *entity.User
	patient         *entity.User
	doctor          *entity.User
	userRepo        *fakeUserRepo
	appointmentRepo *fakeAppointmentRepo
	hospitalRepo    *fakeHospitalRepo
	auditRepo       *fakeAuditLogRepo
	settingRepo     *fakeSettingRepo
	notifier        *recordingNotifier
	usecase         AdminUsecase
}

func newAdminFixture(t *testing.T, appointments ...*entity.Appointment) *adminFixture {
	t.Helper()

	admin := &entity.User{ID: uuid.New(), Name: "Root", Email: "root@example.com", Role: entity.RoleAdmin, Status: entity.UserStatusActive}
	patient := &entity.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: entity.RolePatient, Status: entity.UserStatusActive}
	doctor := &entity.User{ID: uuid.New(), Name: "Dr. Bob", Email: "bob@example.com", Role: entity.RoleDoctor, Status: entity.UserStatusActive}

	userRepo := newFakeUserRepo(admin, patient, doctor)
	appointmentRepo := newFakeAppointmentRepo(appointments...)
	hospitalRepo := newFakeHospitalRepo()
	auditRepo := &fakeAuditLogRepo{}
	settingRepo := newFakeSettingRepo()
	notifier := &recordingNotifier{}

	auditService := service.NewAuditService(testLogger(), auditRepo)

	return &adminFixture{
		admin:           admin,
		patient:         patient,
		doctor:          doctor,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		hospitalRepo:    hospitalRepo,
		auditRepo:       auditRepo,
		settingRepo:     settingRepo,
		notifier:        notifier,
		usecase:         NewAdminUsecase(testLogger(), userRepo, appointmentRepo, hospitalRepo, auditRepo, settingRepo, auditService, notifier),
	}
}

func (f *adminFixture) appointmentBetween(status entity.AppointmentStatus, daysAhead int, timeOfDay string) *entity.Appointment {
	return &entity.Appointment{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		Date:      time.Now().UTC().AddDate(0, 0, daysAhead),
		Time:      timeOfDay,
		Status:    status,
	}
}

func TestResetUserPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		f := newAdminFixture(t)
		err := f.usecase.ResetUserPassword(ctx, actorFor(f.admin), uuid.New(), service.AuditMeta{})
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Empty(t, f.auditRepo.entries)
	})

	t.Run("records the forced reset", func(t *testing.T) {
		f := newAdminFixture(t)
		meta := service.AuditMeta{IPAddress: "10.0.0.1", UserAgent: "cli"}

		err := f.usecase.ResetUserPassword(ctx, actorFor(f.admin), f.patient.ID, meta)
		require.NoError(t, err)

		entries := f.auditRepo.byAction(entity.AuditActionPasswordResetForced)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].UserID)
		assert.Equal(t, f.patient.ID, *entries[0].UserID)
		assert.Equal(t, f.admin.ID, entries[0].AdminID)
		assert.Equal(t, "10.0.0.1", entries[0].IPAddress)
	})
}

func TestAdminListAppointments(t *testing.T) {
	ctx := context.Background()

	f := newAdminFixture(t)
	require.NoError(t, f.appointmentRepo.Create(ctx, f.appointmentBetween(entity.AppointmentStatusPending, 1, "09:00")))
	require.NoError(t, f.appointmentRepo.Create(ctx, f.appointmentBetween(entity.AppointmentStatusConfirmed, 1, "10:00")))
	require.NoError(t, f.appointmentRepo.Create(ctx, f.appointmentBetween(entity.AppointmentStatusCancelled, 2, "11:00")))

	t.Run("unfiltered", func(t *testing.T) {
		got, err := f.usecase.GetAppointments(ctx, repository.AppointmentFilter{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 3, got.Total)
		assert.Len(t, got.Appointments, 3)
	})

	t.Run("filtered by status", func(t *testing.T) {
		got, err := f.usecase.GetAppointments(ctx, repository.AppointmentFilter{Status: "confirmed", Page: 1, Limit: 20})
		require.NoError(t, err)
		require.Len(t, got.Appointments, 1)
		assert.Equal(t, "confirmed", got.Appointments[0].Status)
	})

	t.Run("filtered by doctor", func(t *testing.T) {
		got, err := f.usecase.GetAppointments(ctx, repository.AppointmentFilter{DoctorID: uuid.New().String(), Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, got.Appointments)
	})
}

func TestOverrideAppointmentStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown appointment", func(t *testing.T) {
		f := newAdminFixture(t)
		req := &dto.OverrideAppointmentStatusRequest{Status: "confirmed"}
		_, err := f.usecase.OverrideAppointmentStatus(ctx, actorFor(f.admin), uuid.New(), req, service.AuditMeta{})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		f := newAdminFixture(t)
		appointment := f.appointmentBetween(entity.AppointmentStatusPending, 1, "09:00")
		require.NoError(t, f.appointmentRepo.Create(ctx, appointment))

		req := &dto.OverrideAppointmentStatusRequest{Status: "archived"}
		_, err := f.usecase.OverrideAppointmentStatus(ctx, actorFor(f.admin), appointment.ID, req, service.AuditMeta{})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("bypasses role gates and notifies both parties", func(t *testing.T) {
		f := newAdminFixture(t)
		appointment := f.appointmentBetween(entity.AppointmentStatusPending, 1, "09:00")
		require.NoError(t, f.appointmentRepo.Create(ctx, appointment))

		req := &dto.OverrideAppointmentStatusRequest{Status: "confirmed"}
		got, err := f.usecase.OverrideAppointmentStatus(ctx, actorFor(f.admin), appointment.ID, req, service.AuditMeta{})
		require.NoError(t, err)
		assert.Equal(t, "confirmed", got.Status)
		assert.Equal(t, entity.AppointmentStatusConfirmed, f.appointmentRepo.appointments[appointment.ID].Status)

		entries := f.auditRepo.byAction(entity.AuditActionAppointmentOverride)
		require.Len(t, entries, 1)
		assert.Equal(t, appointment.ID.String(), entries[0].Details["appointment_id"])

		updated := f.notifier.byEvent(EventAppointmentUpdated)
		require.Len(t, updated, 2)
		rooms := []string{updated[0].Room, updated[1].Room}
		assert.Contains(t, rooms, UserRoom(f.patient.ID))
		assert.Contains(t, rooms, UserRoom(f.doctor.ID))
		assert.Len(t, f.notifier.byEvent(EventDashboardUpdate), 2)
	})
}

func TestAdminCancelAppointment(t *testing.T) {
	ctx := context.Background()

	f := newAdminFixture(t)
	appointment := f.appointmentBetween(entity.AppointmentStatusConfirmed, 1, "09:00")
	require.NoError(t, f.appointmentRepo.Create(ctx, appointment))

	got, err := f.usecase.CancelAppointment(ctx, actorFor(f.admin), appointment.ID, service.AuditMeta{})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Len(t, f.auditRepo.byAction(entity.AuditActionAppointmentCancelled), 1)
	assert.Len(t, f.notifier.byEvent(EventAppointmentUpdated), 2)

	_, err = f.usecase.CancelAppointment(ctx, actorFor(f.admin), uuid.New(), service.AuditMeta{})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestAppointmentStats(t *testing.T) {
	ctx := context.Background()

	f := newAdminFixture(t)
	require.NoError(t, f.appointmentRepo.Create(ctx, f.appointmentBetween(entity.AppointmentStatusPending, 0, "09:00")))
	require.NoError(t, f.appointmentRepo.Create(ctx, f.appointmentBetween(entity.AppointmentStatusConfirmed, 0, "10:00")))
	require.NoError(t, f.appointmentRepo.Create(ctx, f.appointmentBetween(entity.AppointmentStatusConfirmed, 1, "10:00")))

	stats, err := f.usecase.GetAppointmentStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.Today)
	assert.EqualValues(t, 2, stats.ByStatus["confirmed"])
	assert.EqualValues(t, 1, stats.ByStatus["pending"])
}

func TestUpdateSetting(t *testing.T) {
	ctx := context.Background()

	f := newAdminFixture(t)
	meta := service.AuditMeta{}

	first := &dto.UpdateSettingRequest{
		Key:      "booking.max_per_day",
		Value:    []byte(`3`),
		Category: entity.SettingCategoryLimits,
	}
	got, err := f.usecase.UpdateSetting(ctx, actorFor(f.admin), first, meta)
	require.NoError(t, err)
	assert.Equal(t, "booking.max_per_day", got.Key)
	require.NotNil(t, got.UpdatedBy)
	assert.Equal(t, f.admin.ID, *got.UpdatedBy)

	// Same key again: the entry is overwritten, not duplicated
	second := &dto.UpdateSettingRequest{
		Key:      "booking.max_per_day",
		Value:    []byte(`5`),
		Category: entity.SettingCategoryLimits,
	}
	_, err = f.usecase.UpdateSetting(ctx, actorFor(f.admin), second, meta)
	require.NoError(t, err)

	list, err := f.usecase.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "5", string(list.Settings[0].Value))

	assert.Len(t, f.auditRepo.byAction(entity.AuditActionSettingsUpdated), 2)
}
