package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
)

func TherapistToResponse(t *entity.TherapistProfile) *dto.TherapistProfileResponse {
	if t == nil {
		return nil
	}

	response := &dto.TherapistProfileResponse{
		UserID:            t.UserID,
		HourlyRate:        t.HourlyRate,
		Availability:      AvailabilityToResponse(t.Availability),
		Specialization:    t.Specialization,
		YearsOfExperience: t.YearsOfExperience,
		Bio:               t.Bio,
		IsCommunity:       t.IsCommunity,
	}

	// Profile is only set when preloaded
	if t.Profile.ID != uuid.Nil {
		response.FullName = t.Profile.FullName
		response.Email = t.Profile.Email
		response.ProfileImageURL = t.Profile.ProfileImageURL
		response.Role = entity.RoleNameByID(t.Profile.RoleID)
	}

	return response
}

func TherapistsToResponses(list []entity.TherapistProfile) []dto.TherapistProfileResponse {
	responses := make([]dto.TherapistProfileResponse, len(list))
	for i := range list {
		responses[i] = *TherapistToResponse(&list[i])
	}
	return responses
}

func AvailabilityToResponse(days []entity.AvailabilityDay) []dto.AvailabilityDayResponse {
	responses := make([]dto.AvailabilityDayResponse, len(days))
	for i, d := range days {
		responses[i] = dto.AvailabilityDayResponse{Date: d.Date, Slots: d.Slots}
	}
	return responses
}

func AvailabilityFromRequest(days []dto.AvailabilityDayRequest) []entity.AvailabilityDay {
	out := make([]entity.AvailabilityDay, len(days))
	for i, d := range days {
		out[i] = entity.AvailabilityDay{Date: d.Date, Slots: d.Slots}
	}
	return out
}
