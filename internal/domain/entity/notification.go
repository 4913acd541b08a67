package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTypeBooking     = "booking"
	NotificationTypePayment     = "payment"
	NotificationTypeAppointment = "appointment"
	NotificationTypeReminder    = "reminder"
	NotificationTypeSystem      = "system"
)

// Notification is a message row for a single recipient. Only IsRead ever changes.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type"`
	ActionURL string    `gorm:"type:text" json:"action_url,omitempty"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
