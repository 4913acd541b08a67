package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentAwaitingPayment AppointmentStatus = "awaiting_payment"
	AppointmentScheduled       AppointmentStatus = "scheduled"
	AppointmentCompleted       AppointmentStatus = "completed"
	AppointmentCancelled       AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled
}

// CanTransitionTo encodes awaiting_payment -> scheduled -> completed, with
// cancellation allowed from any non-terminal state.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case AppointmentScheduled:
		return s == AppointmentAwaitingPayment
	case AppointmentCompleted:
		return s == AppointmentScheduled
	case AppointmentCancelled:
		return true
	}
	return false
}

// Appointment is a confirmed session produced from an accepted booking request
type Appointment struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	TherapistID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"therapist_id"`
	BookingRequestID *uuid.UUID        `gorm:"type:uuid;uniqueIndex" json:"booking_request_id,omitempty"`
	StartTime        time.Time         `gorm:"not null;index" json:"start_time"`
	EndTime          time.Time         `gorm:"not null" json:"end_time"`
	Status           AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	SessionType      string            `gorm:"type:varchar(20);not null" json:"session_type"`
	Amount           decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	PaymentID        *uuid.UUID        `gorm:"type:uuid" json:"payment_id,omitempty"`
	CreatedAt        time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Client    Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Therapist Profile `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsParticipant reports whether userID is the client or the provider.
func (a *Appointment) IsParticipant(userID uuid.UUID) bool {
	return a.ClientID == userID || a.TherapistID == userID
}
