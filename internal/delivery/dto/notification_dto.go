package dto

import (
	"time"

	"github.com/google/uuid"
)

type BroadcastRequest struct {
	Audience  string `json:"audience" validate:"required,oneof=all client therapist friend admin"`
	Title     string `json:"title" validate:"required,max=255"`
	Message   string `json:"message" validate:"required,max=2000"`
	ActionURL string `json:"action_url" validate:"omitempty,max=500"`
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	ActionURL string    `json:"action_url,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type BroadcastResponse struct {
	TaskID   string `json:"task_id"`
	Audience string `json:"audience"`
}
