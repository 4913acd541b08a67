package repository

import (
	"errors"

	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type profileRepository struct{}

func NewProfileRepository() domainRepo.ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(db *gorm.DB, profile *entity.Profile) error {
	return db.Omit("Role", "TherapistProfile").Create(profile).Error
}

func (r *profileRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.Preload("Role").Preload("TherapistProfile").Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByEmail(db *gorm.DB, email string) (*entity.Profile, error) {
	var profile entity.Profile
	err := db.Preload("Role").Where("LOWER(email) = LOWER(?)", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(db *gorm.DB, profile *entity.Profile) error {
	return db.Omit("Role", "TherapistProfile").Save(profile).Error
}

func (r *profileRepository) UpdateImageURL(db *gorm.DB, id uuid.UUID, url string) (int64, error) {
	result := db.Model(&entity.Profile{}).Where("id = ?", id).Update("profile_image_url", url)
	return result.RowsAffected, result.Error
}

func (r *profileRepository) FindAll(db *gorm.DB, filter entity.UserFilter) ([]entity.Profile, int64, error) {
	query := db.Model(&entity.Profile{})
	if filter.RoleID != 0 {
		query = query.Where("role_id = ?", filter.RoleID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []entity.Profile
	err := query.Preload("Role").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *profileRepository) FindIDsAfter(db *gorm.DB, roleID int, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := db.Model(&entity.Profile{}).Where("is_active = ?", true).Where("id > ?", after)
	if roleID != 0 {
		query = query.Where("role_id = ?", roleID)
	}

	var ids []uuid.UUID
	err := query.Order("id ASC").Limit(limit).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *profileRepository) CountByRole(db *gorm.DB, roleID int) (int64, error) {
	var count int64
	err := db.Model(&entity.Profile{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}
