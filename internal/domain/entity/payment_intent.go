package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentIntentStatus string

const (
	PaymentIntentPending   PaymentIntentStatus = "pending"
	PaymentIntentCompleted PaymentIntentStatus = "completed"
	PaymentIntentCancelled PaymentIntentStatus = "cancelled"
)

// PaymentIntent records money owed for a paid booking request
type PaymentIntent struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BookingRequestID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"booking_request_id"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	TherapistID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"therapist_id"`
	Amount           decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string              `gorm:"type:varchar(3);not null" json:"currency"`
	Status           PaymentIntentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}
