package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=30"`
	Role     string `json:"role" validate:"required,oneof=client therapist friend"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID               uuid.UUID                 `json:"id"`
	Email            string                    `json:"email"`
	FullName         string                    `json:"full_name"`
	Phone            string                    `json:"phone,omitempty"`
	ProfileImageURL  string                    `json:"profile_image_url,omitempty"`
	Role             string                    `json:"role"`
	IsActive         bool                      `json:"is_active"`
	TherapistProfile *TherapistProfileResponse `json:"therapist_profile,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
