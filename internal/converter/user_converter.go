package converter

import (
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		Status:          user.Status,
		Specialization:  user.Specialization,
		Experience:      user.Experience,
		ConsultationFee: user.ConsultationFee,
		IsVerified:      user.IsVerified,
		HospitalID:      user.HospitalID,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	for _, slot := range user.Availability {
		response.Availability = append(response.Availability, dto.AvailabilitySlotRequest{
			Day:         slot.Day,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			IsAvailable: slot.IsAvailable,
		})
	}

	return response
}

// UsersToResponses converts a slice of User entities to UserResponse DTOs
func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i, user := range users {
		resp := UserToResponse(&user)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// UserToBrief converts a User entity to the trimmed UserBrief DTO
func UserToBrief(user *entity.User) dto.UserBrief {
	if user == nil {
		return dto.UserBrief{}
	}
	return dto.UserBrief{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
