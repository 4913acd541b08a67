package repository

import (
	"errors"

	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct{}

func NewTransactionRepository() domainRepo.TransactionRepository {
	return &transactionRepository{}
}

func (r *transactionRepository) Create(db *gorm.DB, txn *entity.Transaction) error {
	return db.Create(txn).Error
}

func (r *transactionRepository) FindByReference(db *gorm.DB, reference string) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := db.Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) FindByUserID(db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Transaction, error) {
	var txns []entity.Transaction
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepository) TransitionStatus(db *gorm.DB, reference string, from, to entity.TransactionStatus) (int64, error) {
	result := db.Model(&entity.Transaction{}).
		Where("reference = ? AND status = ?", reference, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *transactionRepository) SumCompleted(db *gorm.DB, txnType entity.TransactionType) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&entity.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("transaction_type = ? AND status = ?", txnType, entity.TransactionCompleted).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
