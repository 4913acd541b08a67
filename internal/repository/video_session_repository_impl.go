package repository

import (
	"errors"

	"theralink/internal/domain/entity"
	domainRepo "theralink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type videoSessionRepository struct{}

func NewVideoSessionRepository() domainRepo.VideoSessionRepository {
	return &videoSessionRepository{}
}

func (r *videoSessionRepository) Create(db *gorm.DB, session *entity.VideoSession) error {
	return db.Create(session).Error
}

func (r *videoSessionRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.VideoSession, error) {
	var session entity.VideoSession
	err := db.Where("appointment_id = ?", appointmentID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}
