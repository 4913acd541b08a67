package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the identity record every other table points at
type Profile struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID          int       `gorm:"not null;index" json:"role_id"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"type:text;not null" json:"-"`
	FullName        string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone           string    `gorm:"type:varchar(30)" json:"phone,omitempty"`
	ProfileImageURL string    `gorm:"type:text" json:"profile_image_url,omitempty"`
	IsActive        bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role             Role              `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	TherapistProfile *TherapistProfile `gorm:"foreignKey:UserID" json:"therapist_profile,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}
