package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentIntentRepository interface {
	Create(db *gorm.DB, intent *entity.PaymentIntent) error
	FindByBookingRequestID(db *gorm.DB, bookingRequestID uuid.UUID) (*entity.PaymentIntent, error)
	TransitionStatus(db *gorm.DB, bookingRequestID uuid.UUID, from, to entity.PaymentIntentStatus) (int64, error)
}
