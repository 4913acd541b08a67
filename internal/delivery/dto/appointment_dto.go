package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

type AppointmentResponse struct {
	ID               uuid.UUID       `json:"id"`
	ClientID         uuid.UUID       `json:"client_id"`
	ClientName       string          `json:"client_name,omitempty"`
	TherapistID      uuid.UUID       `json:"therapist_id"`
	TherapistName    string          `json:"therapist_name,omitempty"`
	BookingRequestID *uuid.UUID      `json:"booking_request_id,omitempty"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	Status           string          `json:"status"`
	SessionType      string          `json:"session_type"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentID        *uuid.UUID      `json:"payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
