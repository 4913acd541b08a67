package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
)

func BookingToResponse(b *entity.BookingRequest) *dto.BookingResponse {
	if b == nil {
		return nil
	}

	return &dto.BookingResponse{
		ID:              b.ID,
		ClientID:        b.ClientID,
		ClientName:      b.Client.FullName,
		TherapistID:     b.TherapistID,
		TherapistName:   b.Therapist.FullName,
		RequestedDate:   b.RequestedDate,
		RequestedTime:   b.RequestedTime,
		DurationMinutes: b.DurationMinutes,
		SessionType:     b.SessionType,
		Message:         b.Message,
		PaymentRequired: b.PaymentRequired,
		PaymentAmount:   b.PaymentAmount,
		Status:          string(b.Status),
		RejectionReason: b.RejectionReason,
		AppointmentID:   b.AppointmentID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func BookingsToResponses(bookings []entity.BookingRequest) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}

func PaymentIntentToResponse(p *entity.PaymentIntent) *dto.PaymentIntentResponse {
	if p == nil {
		return nil
	}
	return &dto.PaymentIntentResponse{
		ID:       p.ID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Status:   string(p.Status),
	}
}
