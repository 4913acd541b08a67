package repository

import (
	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct{}

func NewWalletRepository() domainRepo.WalletRepository {
	return &walletRepository{}
}

func (r *walletRepository) FindOrCreate(db *gorm.DB, userID uuid.UUID, currency string) (*entity.Wallet, error) {
	wallet := entity.Wallet{UserID: userID, Balance: decimal.Zero, Currency: currency}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&wallet).Error
	if err != nil {
		return nil, err
	}

	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Credit upserts so a first credit also creates the wallet.
func (r *walletRepository) Credit(db *gorm.DB, userID uuid.UUID, amount decimal.Decimal, currency string) error {
	wallet := entity.Wallet{UserID: userID, Balance: amount, Currency: currency}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("wallets.balance + EXCLUDED.balance"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&wallet).Error
}

func (r *walletRepository) Debit(db *gorm.DB, userID uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := db.Model(&entity.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	return result.RowsAffected, result.Error
}
