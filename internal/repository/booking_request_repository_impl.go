package repository

import (
	"errors"

	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingRequestRepository struct{}

func NewBookingRequestRepository() domainRepo.BookingRequestRepository {
	return &bookingRequestRepository{}
}

func (r *bookingRequestRepository) Create(db *gorm.DB, booking *entity.BookingRequest) error {
	return db.Omit("Client", "Therapist").Create(booking).Error
}

func (r *bookingRequestRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.BookingRequest, error) {
	var booking entity.BookingRequest
	err := db.Preload("Client").Preload("Therapist").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRequestRepository) FindByClientID(db *gorm.DB, clientID uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error) {
	return r.findBy(db, "client_id", clientID, filter)
}

func (r *bookingRequestRepository) FindByTherapistID(db *gorm.DB, therapistID uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error) {
	return r.findBy(db, "therapist_id", therapistID, filter)
}

func (r *bookingRequestRepository) findBy(db *gorm.DB, column string, id uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error) {
	var bookings []entity.BookingRequest
	query := db.Preload("Client").Preload("Therapist").Where(column+" = ?", id)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := query.Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRequestRepository) TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus, fields map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := db.Model(&entity.BookingRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *bookingRequestRepository) CountByStatus(db *gorm.DB, status entity.BookingStatus) (int64, error) {
	var count int64
	err := db.Model(&entity.BookingRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
