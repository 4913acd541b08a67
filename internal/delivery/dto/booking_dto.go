package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	TherapistID     uuid.UUID `json:"therapist_id" validate:"required"`
	RequestedDate   string    `json:"requested_date" validate:"required"` // Format: YYYY-MM-DD
	RequestedTime   string    `json:"requested_time" validate:"required"` // Format: HH:MM
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=15,max=240"`
	SessionType     string    `json:"session_type" validate:"required,oneof=video audio chat"`
	Message         string    `json:"message" validate:"omitempty,max=1000"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// Response DTOs

type PaymentIntentResponse struct {
	ID       uuid.UUID       `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}

type BookingResponse struct {
	ID              uuid.UUID              `json:"id"`
	ClientID        uuid.UUID              `json:"client_id"`
	ClientName      string                 `json:"client_name,omitempty"`
	TherapistID     uuid.UUID              `json:"therapist_id"`
	TherapistName   string                 `json:"therapist_name,omitempty"`
	RequestedDate   string                 `json:"requested_date"`
	RequestedTime   string                 `json:"requested_time"`
	DurationMinutes int                    `json:"duration_minutes"`
	SessionType     string                 `json:"session_type"`
	Message         string                 `json:"message,omitempty"`
	PaymentRequired bool                   `json:"payment_required"`
	PaymentAmount   decimal.Decimal        `json:"payment_amount"`
	Status          string                 `json:"status"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	AppointmentID   *uuid.UUID             `json:"appointment_id,omitempty"`
	PaymentIntent   *PaymentIntentResponse `json:"payment_intent,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

type AcceptBookingResponse struct {
	Booking     BookingResponse     `json:"booking"`
	Appointment AppointmentResponse `json:"appointment"`
}
