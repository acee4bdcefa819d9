package converter

import (
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		Patient:   UserToBrief(&appointment.Patient),
		Doctor:    UserToBrief(&appointment.Doctor),
		Date:      appointment.Date.Format("2006-01-02"),
		Time:      appointment.Time,
		Reason:    appointment.Reason,
		Status:    string(appointment.Status),
		Notes:     appointment.Notes,
		Type:      string(appointment.Type),
		Documents: appointment.Documents,
		Fee:       appointment.Fee,
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
