package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking request
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

const (
	SessionTypeVideo = "video"
	SessionTypeAudio = "audio"
	SessionTypeChat  = "chat"
)

// BookingRequest is a proposed session created by a client
type BookingRequest struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	TherapistID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"therapist_id"`
	RequestedDate   string          `gorm:"type:varchar(10);not null" json:"requested_date"`
	RequestedTime   string          `gorm:"type:varchar(5);not null" json:"requested_time"`
	DurationMinutes int             `gorm:"not null" json:"duration_minutes"`
	SessionType     string          `gorm:"type:varchar(20);not null" json:"session_type"`
	Message         string          `gorm:"type:text" json:"message,omitempty"`
	PaymentRequired bool            `gorm:"not null;default:false" json:"payment_required"`
	PaymentAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"payment_amount"`
	Status          BookingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	AppointmentID   *uuid.UUID      `gorm:"type:uuid" json:"appointment_id,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Client    Profile `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Therapist Profile `gorm:"foreignKey:TherapistID" json:"therapist,omitempty"`
}

func (BookingRequest) TableName() string {
	return "booking_requests"
}

func (b *BookingRequest) IsPending() bool {
	return b.Status == BookingStatusPending
}

// StartTime combines the requested date and time in UTC.
func (b *BookingRequest) StartTime() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", b.RequestedDate+" "+b.RequestedTime)
}
