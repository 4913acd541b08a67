package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoSessionRepository interface {
	Create(db *gorm.DB, session *entity.VideoSession) error
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.VideoSession, error)
}
