package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UpsertTherapistProfileRequest struct {
	HourlyRate        decimal.Decimal `json:"hourly_rate"`
	Specialization    string          `json:"specialization" validate:"omitempty,max=150"`
	YearsOfExperience int             `json:"years_of_experience" validate:"gte=0,lte=80"`
	Bio               string          `json:"bio" validate:"omitempty,max=2000"`
	IsCommunity       bool            `json:"is_community"`
}

type AvailabilityDayRequest struct {
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Slots []string `json:"slots" validate:"required,dive,datetime=15:04"`
}

type UpdateAvailabilityRequest struct {
	Availability []AvailabilityDayRequest `json:"availability" validate:"dive"`
}

// Response DTOs

type AvailabilityDayResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type TherapistProfileResponse struct {
	UserID            uuid.UUID                 `json:"user_id"`
	FullName          string                    `json:"full_name,omitempty"`
	Email             string                    `json:"email,omitempty"`
	ProfileImageURL   string                    `json:"profile_image_url,omitempty"`
	Role              string                    `json:"role,omitempty"`
	HourlyRate        decimal.Decimal           `json:"hourly_rate"`
	Availability      []AvailabilityDayResponse `json:"availability"`
	Specialization    string                    `json:"specialization,omitempty"`
	YearsOfExperience int                       `json:"years_of_experience"`
	Bio               string                    `json:"bio,omitempty"`
	IsCommunity       bool                      `json:"is_community"`
}

type TherapistListResponse struct {
	Therapists []TherapistProfileResponse `json:"therapists"`
	Total      int                        `json:"total"`
}
