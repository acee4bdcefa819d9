package usecase

import (
	"context"
	"errors"
	"time"

	"medicare-backend/internal/converter"
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"
	"medicare-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrAuditLogNotFound = errors.New("audit log not found")
	ErrNotADoctor       = errors.New("user is not a doctor")
	ErrCannotEditSelf   = errors.New("admins cannot change their own account here")
)

type AdminUsecase interface {
	GetUsers(ctx context.Context, filter repository.UserFilter) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor entity.Actor, userID uuid.UUID, req *dto.UpdateUserRequest, meta service.AuditMeta) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, actor entity.Actor, userID uuid.UUID, meta service.AuditMeta) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor entity.Actor, userID uuid.UUID, meta service.AuditMeta) error
	ResetUserPassword(ctx context.Context, actor entity.Actor, userID uuid.UUID, meta service.AuditMeta) error
	VerifyDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, meta service.AuditMeta) (*dto.UserResponse, error)

	GetAppointments(ctx context.Context, filter repository.AppointmentFilter) (*dto.AdminAppointmentListResponse, error)
	OverrideAppointmentStatus(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.OverrideAppointmentStatusRequest, meta service.AuditMeta) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, meta service.AuditMeta) (*dto.AppointmentResponse, error)
	GetAppointmentStats(ctx context.Context) (*dto.AppointmentStatsResponse, error)

	GetHospitals(ctx context.Context) (*dto.HospitalListResponse, error)
	GetHospital(ctx context.Context, hospitalID uuid.UUID) (*dto.HospitalResponse, error)
	CreateHospital(ctx context.Context, actor entity.Actor, req *dto.CreateHospitalRequest, meta service.AuditMeta) (*dto.HospitalResponse, error)
	UpdateHospital(ctx context.Context, actor entity.Actor, hospitalID uuid.UUID, req *dto.UpdateHospitalRequest, meta service.AuditMeta) (*dto.HospitalResponse, error)
	DeleteHospital(ctx context.Context, actor entity.Actor, hospitalID uuid.UUID, meta service.AuditMeta) error

	GetSettings(ctx context.Context) (*dto.SettingListResponse, error)
	UpdateSetting(ctx context.Context, actor entity.Actor, req *dto.UpdateSettingRequest, meta service.AuditMeta) (*dto.SettingResponse, error)

	GetAuditLogs(ctx context.Context, filter repository.AuditLogFilter) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type adminUsecase struct {
	log             *logrus.Logger
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	hospitalRepo    repository.HospitalRepository
	auditLogRepo    repository.AuditLogRepository
	settingRepo     repository.SystemSettingRepository
	auditService    *service.AuditService
	notifier        Notifier
}

func NewAdminUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	hospitalRepo repository.HospitalRepository,
	auditLogRepo repository.AuditLogRepository,
	settingRepo repository.SystemSettingRepository,
	auditService *service.AuditService,
	notifier Notifier,
) AdminUsecase {
	return &adminUsecase{
		log:             log,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		hospitalRepo:    hospitalRepo,
		auditLogRepo:    auditLogRepo,
		settingRepo:     settingRepo,
		auditService:    auditService,
		notifier:        notifier,
	}
}

func (u *adminUsecase) GetUsers(ctx context.Context, filter repository.UserFilter) (*dto.UserListResponse, error) {
	users, total, err := u.userRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}

	return &dto.UserListResponse{
		Users: converter.UsersToResponses(users),
		Total: total,
	}, nil
}

func (u *adminUsecase) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// UpdateUser applies role, status, verification and hospital assignment
// changes. Every applied change lands in the audit trail with a before/after
// snapshot of the touched fields.
func (u *adminUsecase) UpdateUser(ctx context.Context, actor entity.Actor, userID uuid.UUID, req *dto.UpdateUserRequest, meta service.AuditMeta) (*dto.UserResponse, error) {
	if userID == actor.ID {
		return nil, ErrCannotEditSelf
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	changes := entity.JSON{}

	if req.Role != nil && *req.Role != user.Role {
		changes["role"] = map[string]interface{}{"from": user.Role, "to": *req.Role}
		user.Role = *req.Role
	}
	if req.Status != nil && *req.Status != user.Status {
		changes["status"] = map[string]interface{}{"from": user.Status, "to": *req.Status}
		user.Status = *req.Status
	}
	if req.IsVerified != nil && *req.IsVerified != user.IsVerified {
		changes["is_verified"] = map[string]interface{}{"from": user.IsVerified, "to": *req.IsVerified}
		user.IsVerified = *req.IsVerified
	}
	if req.HospitalID != nil {
		hospitalID, err := uuid.Parse(*req.HospitalID)
		if err != nil {
			return nil, ErrHospitalNotFound
		}
		hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
		if err != nil {
			return nil, err
		}
		if hospital == nil {
			return nil, ErrHospitalNotFound
		}
		changes["hospital_id"] = map[string]interface{}{"to": hospitalID.String()}
		user.HospitalID = &hospitalID
	}

	if len(changes) == 0 {
		return converter.UserToResponse(user), nil
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		u.log.Warnf("Failed to update user %s: %+v", userID, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionUserUpdated, &userID, actor.ID, changes, meta)
	u.notifier.EmitToRoom(UserRoom(userID), EventDashboardUpdate, nil)

	u.log.Infof("User updated by admin: id=%s, admin=%s", userID, actor.ID)
	return converter.UserToResponse(user), nil
}

// DeactivateUser suspends the account. Suspended users fail login and token
// refresh; already-issued access tokens ride out their TTL.
func (u *adminUsecase) DeactivateUser(ctx context.Context, actor entity.Actor, userID uuid.UUID, meta service.AuditMeta) (*dto.UserResponse, error) {
	if userID == actor.ID {
		return nil, ErrCannotEditSelf
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	previousStatus := user.Status
	user.Status = entity.UserStatusSuspended
	if err := u.userRepo.Update(ctx, user); err != nil {
		u.log.Warnf("Failed to deactivate user %s: %+v", userID, err)
		return nil, err
	}

	action := entity.AuditActionUserDeactivated
	if user.IsDoctor() {
		action = entity.AuditActionDoctorSuspended
	}
	u.auditService.Record(ctx, action, &userID, actor.ID, entity.JSON{
		"status": map[string]interface{}{"from": previousStatus, "to": user.Status},
	}, meta)
	u.notifier.EmitToRoom(UserRoom(userID), EventDashboardUpdate, nil)

	u.log.Infof("User deactivated: id=%s, admin=%s", userID, actor.ID)
	return converter.UserToResponse(user), nil
}

func (u *adminUsecase) DeleteUser(ctx context.Context, actor entity.Actor, userID uuid.UUID, meta service.AuditMeta) error {
	if userID == actor.ID {
		return ErrCannotEditSelf
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		u.log.Warnf("Failed to delete user %s: %+v", userID, err)
		return err
	}

	u.auditService.Record(ctx, entity.AuditActionUserDeleted, &userID, actor.ID, entity.JSON{
		"email": user.Email,
		"role":  user.Role,
	}, meta)

	u.log.Infof("User deleted: id=%s, admin=%s", userID, actor.ID)
	return nil
}

// ResetUserPassword records a forced password reset for the user. The reset
// link itself goes out through the external mail flow; the trail entry is
// what the admin surface produces.
func (u *adminUsecase) ResetUserPassword(ctx context.Context, actor entity.Actor, userID uuid.UUID, meta service.AuditMeta) error {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	u.auditService.Record(ctx, entity.AuditActionPasswordResetForced, &userID, actor.ID, nil, meta)

	u.log.Infof("Password reset forced: id=%s, admin=%s", userID, actor.ID)
	return nil
}

// VerifyDoctor flips the verification flag that makes a doctor bookable
func (u *adminUsecase) VerifyDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, meta service.AuditMeta) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsDoctor() {
		return nil, ErrNotADoctor
	}

	user.IsVerified = true
	if user.Status == entity.UserStatusPending {
		user.Status = entity.UserStatusActive
	}
	if err := u.userRepo.Update(ctx, user); err != nil {
		u.log.Warnf("Failed to verify doctor %s: %+v", doctorID, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionDoctorVerified, &doctorID, actor.ID, nil, meta)
	u.notifier.EmitToRoom(UserRoom(doctorID), EventDashboardUpdate, nil)

	u.log.Infof("Doctor verified: id=%s, admin=%s", doctorID, actor.ID)
	return converter.UserToResponse(user), nil
}

func (u *adminUsecase) GetAppointments(ctx context.Context, filter repository.AppointmentFilter) (*dto.AdminAppointmentListResponse, error) {
	appointments, total, err := u.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AdminAppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
	}, nil
}

// OverrideAppointmentStatus sets a status directly, bypassing the doctor and
// patient role gates. The override lands in the audit trail and both parties
// are notified.
func (u *adminUsecase) OverrideAppointmentStatus(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.OverrideAppointmentStatusRequest, meta service.AuditMeta) (*dto.AppointmentResponse, error) {
	status := entity.AppointmentStatus(req.Status)
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	previous := appointment.Status
	appointment.Status = status
	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionAppointmentOverride, nil, actor.ID, entity.JSON{
		"appointment_id": appointmentID.String(),
		"status":         map[string]interface{}{"from": previous, "to": status},
	}, meta)
	u.notifyAppointmentParties(appointment)

	u.log.Infof("Appointment status overridden: id=%s, status=%s, admin=%s", appointmentID, status, actor.ID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *adminUsecase) CancelAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, meta service.AuditMeta) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	appointment.Status = entity.AppointmentStatusCancelled
	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionAppointmentCancelled, nil, actor.ID, entity.JSON{
		"appointment_id": appointmentID.String(),
	}, meta)
	u.notifyAppointmentParties(appointment)

	u.log.Infof("Appointment cancelled by admin: id=%s, admin=%s", appointmentID, actor.ID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *adminUsecase) GetAppointmentStats(ctx context.Context) (*dto.AppointmentStatsResponse, error) {
	counts, err := u.appointmentRepo.CountByStatus(ctx)
	if err != nil {
		u.log.Warnf("Failed to count appointments by status: %+v", err)
		return nil, err
	}

	today, err := u.appointmentRepo.CountOnDate(ctx, time.Now().UTC())
	if err != nil {
		u.log.Warnf("Failed to count today's appointments: %+v", err)
		return nil, err
	}

	byStatus := make(map[string]int64, len(counts))
	var total int64
	for status, count := range counts {
		byStatus[string(status)] = count
		total += count
	}

	return &dto.AppointmentStatsResponse{
		Total:    total,
		Today:    today,
		ByStatus: byStatus,
	}, nil
}

func (u *adminUsecase) notifyAppointmentParties(appointment *entity.Appointment) {
	payload := converter.AppointmentToResponse(appointment)
	for _, userID := range []uuid.UUID{appointment.PatientID, appointment.DoctorID} {
		u.notifier.EmitToRoom(UserRoom(userID), EventAppointmentUpdated, payload)
		u.notifier.EmitToRoom(UserRoom(userID), EventDashboardUpdate, nil)
	}
}

func (u *adminUsecase) GetHospitals(ctx context.Context) (*dto.HospitalListResponse, error) {
	hospitals, err := u.hospitalRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list hospitals: %+v", err)
		return nil, err
	}

	return &dto.HospitalListResponse{
		Hospitals: converter.HospitalsToResponses(hospitals),
		Total:     len(hospitals),
	}, nil
}

func (u *adminUsecase) GetHospital(ctx context.Context, hospitalID uuid.UUID) (*dto.HospitalResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}

	return converter.HospitalToResponse(hospital), nil
}

func (u *adminUsecase) CreateHospital(ctx context.Context, actor entity.Actor, req *dto.CreateHospitalRequest, meta service.AuditMeta) (*dto.HospitalResponse, error) {
	hospital := &entity.Hospital{
		Name:        req.Name,
		Address:     req.Address,
		Departments: req.Departments,
		Phone:       req.Phone,
		Email:       req.Email,
		IsActive:    true,
	}

	if err := u.hospitalRepo.Create(ctx, hospital); err != nil {
		u.log.Warnf("Failed to create hospital: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionHospitalCreated, nil, actor.ID, entity.JSON{
		"hospital_id": hospital.ID.String(),
		"name":        hospital.Name,
	}, meta)

	u.log.Infof("Hospital created: id=%s, admin=%s", hospital.ID, actor.ID)
	return converter.HospitalToResponse(hospital), nil
}

func (u *adminUsecase) UpdateHospital(ctx context.Context, actor entity.Actor, hospitalID uuid.UUID, req *dto.UpdateHospitalRequest, meta service.AuditMeta) (*dto.HospitalResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return nil, err
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}

	if req.Name != nil {
		hospital.Name = *req.Name
	}
	if req.Address != nil {
		hospital.Address = *req.Address
	}
	if req.Departments != nil {
		hospital.Departments = req.Departments
	}
	if req.Phone != nil {
		hospital.Phone = *req.Phone
	}
	if req.Email != nil {
		hospital.Email = *req.Email
	}
	if req.IsActive != nil {
		hospital.IsActive = *req.IsActive
	}

	if err := u.hospitalRepo.Update(ctx, hospital); err != nil {
		u.log.Warnf("Failed to update hospital %s: %+v", hospitalID, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionHospitalUpdated, nil, actor.ID, entity.JSON{
		"hospital_id": hospital.ID.String(),
	}, meta)

	u.log.Infof("Hospital updated: id=%s, admin=%s", hospitalID, actor.ID)
	return converter.HospitalToResponse(hospital), nil
}

func (u *adminUsecase) DeleteHospital(ctx context.Context, actor entity.Actor, hospitalID uuid.UUID, meta service.AuditMeta) error {
	hospital, err := u.hospitalRepo.FindByID(ctx, hospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
		return err
	}
	if hospital == nil {
		return ErrHospitalNotFound
	}

	if err := u.hospitalRepo.Delete(ctx, hospitalID); err != nil {
		u.log.Warnf("Failed to delete hospital %s: %+v", hospitalID, err)
		return err
	}

	u.auditService.Record(ctx, entity.AuditActionHospitalDeleted, nil, actor.ID, entity.JSON{
		"hospital_id": hospitalID.String(),
		"name":        hospital.Name,
	}, meta)

	u.log.Infof("Hospital deleted: id=%s, admin=%s", hospitalID, actor.ID)
	return nil
}

func (u *adminUsecase) GetSettings(ctx context.Context) (*dto.SettingListResponse, error) {
	settings, err := u.settingRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list settings: %+v", err)
		return nil, err
	}

	return &dto.SettingListResponse{
		Settings: converter.SettingsToResponses(settings),
		Total:    len(settings),
	}, nil
}

// UpdateSetting upserts a key-value entry; an existing key is overwritten
func (u *adminUsecase) UpdateSetting(ctx context.Context, actor entity.Actor, req *dto.UpdateSettingRequest, meta service.AuditMeta) (*dto.SettingResponse, error) {
	setting := &entity.SystemSetting{
		Key:         req.Key,
		Value:       entity.JSONValue(req.Value),
		Description: req.Description,
		Category:    req.Category,
		UpdatedBy:   &actor.ID,
	}

	if err := u.settingRepo.Upsert(ctx, setting); err != nil {
		u.log.Warnf("Failed to upsert setting %s: %+v", req.Key, err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionSettingsUpdated, nil, actor.ID, entity.JSON{
		"key":   req.Key,
		"value": string(req.Value),
	}, meta)

	u.log.Infof("Setting updated: key=%s, admin=%s", req.Key, actor.ID)
	return converter.SettingToResponse(setting), nil
}

func (u *adminUsecase) GetAuditLogs(ctx context.Context, filter repository.AuditLogFilter) (*dto.AuditLogListResponse, error) {
	logs, total, err := u.auditLogRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: total,
	}, nil
}

func (u *adminUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	entry, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(entry), nil
}
