package entity

import (
	"time"

	"github.com/google/uuid"
)

const VideoProviderJitsi = "jitsi"

// VideoSession maps an appointment 1:1 to a conferencing room
type VideoSession struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"appointment_id"`
	RoomName      string    `gorm:"type:varchar(255);not null" json:"room_name"`
	Provider      string    `gorm:"type:varchar(30);not null" json:"provider"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VideoSession) TableName() string {
	return "video_sessions"
}
