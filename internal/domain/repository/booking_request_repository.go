package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRequestRepository interface {
	Create(db *gorm.DB, booking *entity.BookingRequest) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.BookingRequest, error)
	FindByClientID(db *gorm.DB, clientID uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error)
	FindByTherapistID(db *gorm.DB, therapistID uuid.UUID, filter entity.BookingFilter) ([]entity.BookingRequest, error)
	// TransitionStatus only updates rows still in from; callers check the affected count.
	TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus, fields map[string]interface{}) (int64, error)
	CountByStatus(db *gorm.DB, status entity.BookingStatus) (int64, error)
}
