package repository

import (
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	CreateBatch(db *gorm.DB, notifications []entity.Notification, batchSize int) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Notification, error)
	FindByUserID(db *gorm.DB, userID uuid.UUID, unreadOnly bool, limit int) ([]entity.Notification, error)
	CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error)
	MarkRead(db *gorm.DB, id, userID uuid.UUID) (int64, error)
	MarkAllRead(db *gorm.DB, userID uuid.UUID) (int64, error)
}
