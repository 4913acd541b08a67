package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByParticipant(db *gorm.DB, userID uuid.UUID, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	TransitionStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, fields map[string]interface{}) (int64, error)
	CountByStatus(db *gorm.DB, status entity.AppointmentStatus) (int64, error)
}
