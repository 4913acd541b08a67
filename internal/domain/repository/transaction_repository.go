package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(db *gorm.DB, txn *entity.Transaction) error
	FindByReference(db *gorm.DB, reference string) (*entity.Transaction, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Transaction, error)
	TransitionStatus(db *gorm.DB, reference string, from, to entity.TransactionStatus) (int64, error)
	SumCompleted(db *gorm.DB, txnType entity.TransactionType) (decimal.Decimal, error)
}
