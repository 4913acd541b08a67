package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
)

func NotificationToResponse(n *entity.Notification) *dto.NotificationResponse {
	if n == nil {
		return nil
	}
	return &dto.NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func NotificationsToResponses(list []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(list))
	for i := range list {
		responses[i] = *NotificationToResponse(&list[i])
	}
	return responses
}
