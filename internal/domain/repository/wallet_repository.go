package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletRepository interface {
	// FindOrCreate returns the user's wallet, creating an empty one on first read.
	FindOrCreate(db *gorm.DB, userID uuid.UUID, currency string) (*entity.Wallet, error)
	Credit(db *gorm.DB, userID uuid.UUID, amount decimal.Decimal, currency string) error
	// Debit subtracts amount only when the balance covers it. Zero rows means insufficient funds.
	Debit(db *gorm.DB, userID uuid.UUID, amount decimal.Decimal) (int64, error)
}
