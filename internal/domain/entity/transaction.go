package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit TransactionType = "deposit"
	TransactionPayment TransactionType = "payment"
	TransactionPayout  TransactionType = "payout"
	TransactionRefund  TransactionType = "refund"
)

type PaymentMethod string

const (
	PaymentMethodWallet  PaymentMethod = "wallet"
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodGateway PaymentMethod = "gateway"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// Transaction is a record of money movement. Reference is unique so a
// gateway confirmation can only settle one row.
type Transaction struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	TherapistID     *uuid.UUID        `gorm:"type:uuid;index" json:"therapist_id,omitempty"`
	AppointmentID   *uuid.UUID        `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Amount          decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency        string            `gorm:"type:varchar(3);not null" json:"currency"`
	TransactionType TransactionType   `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	PaymentMethod   PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	Reference       string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	Status          TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description     string            `gorm:"type:text" json:"description,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
