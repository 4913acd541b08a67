package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TherapistProfileRepository interface {
	Create(db *gorm.DB, profile *entity.TherapistProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.TherapistProfile, error)
	FindAllActive(db *gorm.DB, filter *entity.TherapistFilter) ([]entity.TherapistProfile, error)
	Update(db *gorm.DB, profile *entity.TherapistProfile) error
	UpdateAvailability(db *gorm.DB, userID uuid.UUID, availability []entity.AvailabilityDay) (int64, error)
}
