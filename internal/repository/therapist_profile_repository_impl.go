package repository

import (
	"errors"

	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type therapistProfileRepository struct{}

func NewTherapistProfileRepository() domainRepo.TherapistProfileRepository {
	return &therapistProfileRepository{}
}

func (r *therapistProfileRepository) Create(db *gorm.DB, profile *entity.TherapistProfile) error {
	return db.Omit("Profile").Create(profile).Error
}

func (r *therapistProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.TherapistProfile, error) {
	var profile entity.TherapistProfile
	err := db.Preload("Profile").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindAllActive returns provider records whose profile is active.
// Supports optional filters: name, specialization, community flag and role.
func (r *therapistProfileRepository) FindAllActive(db *gorm.DB, filter *entity.TherapistFilter) ([]entity.TherapistProfile, error) {
	var profiles []entity.TherapistProfile
	query := db.
		Joins("JOIN profiles ON profiles.id = therapist_profiles.user_id").
		Where("profiles.is_active = ?", true)

	if filter != nil {
		if filter.Name != "" {
			query = query.Where("profiles.full_name ILIKE ?", "%"+filter.Name+"%")
		}
		if filter.Specialization != "" {
			query = query.Where("therapist_profiles.specialization ILIKE ?", "%"+filter.Specialization+"%")
		}
		if filter.Community != nil {
			query = query.Where("therapist_profiles.is_community = ?", *filter.Community)
		}
		if filter.RoleID != 0 {
			query = query.Where("profiles.role_id = ?", filter.RoleID)
		}
	}

	err := query.
		Preload("Profile").
		Order("profiles.full_name ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *therapistProfileRepository) Update(db *gorm.DB, profile *entity.TherapistProfile) error {
	return db.Omit("Profile").Save(profile).Error
}

func (r *therapistProfileRepository) UpdateAvailability(db *gorm.DB, userID uuid.UUID, availability []entity.AvailabilityDay) (int64, error) {
	result := db.Model(&entity.TherapistProfile{UserID: userID}).
		Select("Availability").
		Updates(&entity.TherapistProfile{Availability: availability})
	return result.RowsAffected, result.Error
}
