package repository

import (
	"errors"

	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentIntentRepository struct{}

func NewPaymentIntentRepository() domainRepo.PaymentIntentRepository {
	return &paymentIntentRepository{}
}

func (r *paymentIntentRepository) Create(db *gorm.DB, intent *entity.PaymentIntent) error {
	return db.Create(intent).Error
}

func (r *paymentIntentRepository) FindByBookingRequestID(db *gorm.DB, bookingRequestID uuid.UUID) (*entity.PaymentIntent, error) {
	var intent entity.PaymentIntent
	err := db.Where("booking_request_id = ?", bookingRequestID).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &intent, nil
}

func (r *paymentIntentRepository) TransitionStatus(db *gorm.DB, bookingRequestID uuid.UUID, from, to entity.PaymentIntentStatus) (int64, error) {
	result := db.Model(&entity.PaymentIntent{}).
		Where("booking_request_id = ? AND status = ?", bookingRequestID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
