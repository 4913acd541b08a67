package dto

import (
	"time"

	"github.com/google/uuid"
)

// AddCardRequest carries the raw number only long enough to derive last4 and brand.
type AddCardRequest struct {
	CardNumber  string `json:"card_number" validate:"required,min=12,max=23"`
	HolderName  string `json:"holder_name" validate:"required,min=2,max=255"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000,max=2100"`
	CVV         string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

type CardResponse struct {
	ID          uuid.UUID `json:"id"`
	Last4       string    `json:"last4"`
	CardType    string    `json:"card_type"`
	HolderName  string    `json:"holder_name"`
	ExpiryMonth int       `json:"expiry_month"`
	ExpiryYear  int       `json:"expiry_year"`
	CreatedAt   time.Time `json:"created_at"`
}
