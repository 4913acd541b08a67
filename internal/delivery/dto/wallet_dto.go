package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TopUpRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	CallbackURL string          `json:"callback_url" validate:"omitempty,url"`
}

type WithdrawRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Recipient string          `json:"recipient" validate:"required,max=100"`
	Reason    string          `json:"reason" validate:"omitempty,max=255"`
}

type WalletResponse struct {
	UserID   uuid.UUID       `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}
