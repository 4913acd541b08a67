package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(db *gorm.DB, profile *entity.Profile) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Profile, error)
	FindByEmail(db *gorm.DB, email string) (*entity.Profile, error)
	Update(db *gorm.DB, profile *entity.Profile) error
	UpdateImageURL(db *gorm.DB, id uuid.UUID, url string) (int64, error)
	FindAll(db *gorm.DB, filter entity.UserFilter) ([]entity.Profile, int64, error)
	// FindIDsAfter pages recipient ids in id order. roleID 0 means every role.
	FindIDsAfter(db *gorm.DB, roleID int, after uuid.UUID, limit int) ([]uuid.UUID, error)
	CountByRole(db *gorm.DB, roleID int) (int64, error)
}
