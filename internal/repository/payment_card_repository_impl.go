package repository

import (
	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentCardRepository struct{}

func NewPaymentCardRepository() domainRepo.PaymentCardRepository {
	return &paymentCardRepository{}
}

func (r *paymentCardRepository) Create(db *gorm.DB, card *entity.PaymentCard) error {
	return db.Create(card).Error
}

func (r *paymentCardRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.PaymentCard, error) {
	var cards []entity.PaymentCard
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *paymentCardRepository) Delete(db *gorm.DB, id, userID uuid.UUID) (int64, error) {
	affected := db.Where("id = ? AND user_id = ?", id, userID).Delete(&entity.PaymentCard{})
	return affected.RowsAffected, affected.Error
}
