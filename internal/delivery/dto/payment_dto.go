package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type PayWithCardRequest struct {
	CallbackURL string `json:"callback_url" validate:"omitempty,url"`
}

type VerifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required,max=100"`
}

// Response DTOs

type PaymentSummaryResponse struct {
	AppointmentID uuid.UUID       `json:"appointment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	WalletPayable bool            `json:"wallet_payable"`
	Status        string          `json:"status"`
}

type CheckoutResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	Provider         string `json:"provider"`
}

type TransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	TherapistID     *uuid.UUID      `json:"therapist_id,omitempty"`
	AppointmentID   *uuid.UUID      `json:"appointment_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionType string          `json:"transaction_type"`
	PaymentMethod   string          `json:"payment_method"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

type PaymentResultResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	// AlreadySettled is true when the reference had been settled before this call.
	AlreadySettled bool `json:"already_settled"`
}
