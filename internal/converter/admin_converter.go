package converter

import (
	"encoding/json"

	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
)

// HospitalToResponse converts a Hospital entity to HospitalResponse DTO
func HospitalToResponse(hospital *entity.Hospital) *dto.HospitalResponse {
	if hospital == nil {
		return nil
	}

	return &dto.HospitalResponse{
		ID:          hospital.ID,
		Name:        hospital.Name,
		Address:     hospital.Address,
		Departments: hospital.Departments,
		Phone:       hospital.Phone,
		Email:       hospital.Email,
		IsActive:    hospital.IsActive,
		CreatedAt:   hospital.CreatedAt,
		UpdatedAt:   hospital.UpdatedAt,
	}
}

// HospitalsToResponses converts a slice of Hospital entities to DTOs
func HospitalsToResponses(hospitals []entity.Hospital) []dto.HospitalResponse {
	responses := make([]dto.HospitalResponse, len(hospitals))
	for i, hospital := range hospitals {
		resp := HospitalToResponse(&hospital)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// SettingToResponse converts a SystemSetting entity to SettingResponse DTO
func SettingToResponse(setting *entity.SystemSetting) *dto.SettingResponse {
	if setting == nil {
		return nil
	}

	return &dto.SettingResponse{
		Key:         setting.Key,
		Value:       json.RawMessage(setting.Value),
		Description: setting.Description,
		Category:    setting.Category,
		UpdatedBy:   setting.UpdatedBy,
		UpdatedAt:   setting.UpdatedAt,
	}
}

// SettingsToResponses converts a slice of SystemSetting entities to DTOs
func SettingsToResponses(settings []entity.SystemSetting) []dto.SettingResponse {
	responses := make([]dto.SettingResponse, len(settings))
	for i, setting := range settings {
		resp := SettingToResponse(&setting)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// AuditLogToResponse converts an AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	response := &dto.AuditLogResponse{
		ID:        log.ID,
		Action:    log.Action,
		Admin:     UserToBrief(&log.Admin),
		Details:   log.Details,
		IPAddress: log.IPAddress,
		UserAgent: log.UserAgent,
		CreatedAt: log.CreatedAt,
	}

	if log.User != nil {
		brief := UserToBrief(log.User)
		response.User = &brief
	}

	return response
}

// AuditLogsToResponses converts a slice of AuditLog entities to DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, log := range logs {
		resp := AuditLogToResponse(&log)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
