package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
)

func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:               a.ID,
		ClientID:         a.ClientID,
		ClientName:       a.Client.FullName,
		TherapistID:      a.TherapistID,
		TherapistName:    a.Therapist.FullName,
		BookingRequestID: a.BookingRequestID,
		StartTime:        a.StartTime,
		EndTime:          a.EndTime,
		Status:           string(a.Status),
		SessionType:      a.SessionType,
		Amount:           a.Amount,
		PaymentID:        a.PaymentID,
		CreatedAt:        a.CreatedAt,
	}
}

func AppointmentsToResponses(list []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(list))
	for i := range list {
		responses[i] = *AppointmentToResponse(&list[i])
	}
	return responses
}
