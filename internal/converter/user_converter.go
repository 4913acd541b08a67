package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
)

// ProfileToResponse converts a Profile entity to UserResponse DTO.
// Includes the therapist record when it is loaded.
func ProfileToResponse(profile *entity.Profile) *dto.UserResponse {
	if profile == nil {
		return nil
	}

	roleName := profile.Role.RoleName
	if roleName == "" {
		roleName = entity.RoleNameByID(profile.RoleID)
	}

	response := &dto.UserResponse{
		ID:              profile.ID,
		Email:           profile.Email,
		FullName:        profile.FullName,
		Phone:           profile.Phone,
		ProfileImageURL: profile.ProfileImageURL,
		Role:            roleName,
		IsActive:        profile.IsActive,
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
	}

	if profile.TherapistProfile != nil {
		response.TherapistProfile = TherapistToResponse(profile.TherapistProfile)
	}

	return response
}

func ProfilesToResponses(profiles []entity.Profile) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(profiles))
	for i := range profiles {
		responses[i] = *ProfileToResponse(&profiles[i])
	}
	return responses
}
