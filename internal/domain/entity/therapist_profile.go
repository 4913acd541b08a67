package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityDay is one entry of a provider's flat availability list.
// Slots are "HH:MM" strings; no overlap or timezone handling is applied.
type AvailabilityDay struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// TherapistProfile holds the capability record of a therapist or friend
type TherapistProfile struct {
	UserID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"user_id"`
	HourlyRate        decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"hourly_rate"`
	Availability      []AvailabilityDay `gorm:"type:jsonb;serializer:json" json:"availability"`
	Specialization    string            `gorm:"type:varchar(150);index" json:"specialization,omitempty"`
	YearsOfExperience int               `gorm:"not null;default:0" json:"years_of_experience"`
	Bio               string            `gorm:"type:text" json:"bio,omitempty"`
	IsCommunity       bool              `gorm:"not null;default:false" json:"is_community"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Profile Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (TherapistProfile) TableName() string {
	return "therapist_profiles"
}

// RequiresPayment is false for community (free) providers.
func (t *TherapistProfile) RequiresPayment() bool {
	return !t.IsCommunity
}
