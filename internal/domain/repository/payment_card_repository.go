package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentCardRepository interface {
	Create(db *gorm.DB, card *entity.PaymentCard) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.PaymentCard, error)
	Delete(db *gorm.DB, id, userID uuid.UUID) (int64, error)
}
