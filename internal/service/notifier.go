package service

import (
	"context"

	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier splits notification delivery in two: rows are staged inside the
// caller's transaction, realtime pushes happen only after commit.
type Notifier interface {
	Stage(tx *gorm.DB, notifications ...*entity.Notification) error
	Announce(ctx context.Context, notifications ...*entity.Notification)
	// RefreshUnreadCount pushes the current count after reads change it.
	RefreshUnreadCount(ctx context.Context, userID uuid.UUID)
}

type notifier struct {
	transactor       repository.Transactor
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	hub              RealtimeHub
}

func NewNotifier(
	transactor repository.Transactor,
	log *logrus.Logger,
	notificationRepo repository.NotificationRepository,
	hub RealtimeHub,
) Notifier {
	return &notifier{
		transactor:       transactor,
		log:              log,
		notificationRepo: notificationRepo,
		hub:              hub,
	}
}

func (n *notifier) Stage(tx *gorm.DB, notifications ...*entity.Notification) error {
	for _, notification := range notifications {
		if notification.ID == uuid.Nil {
			notification.ID = uuid.New()
		}
		if err := n.notificationRepo.Create(tx, notification); err != nil {
			return err
		}
	}
	return nil
}

// Announce is best effort: failures are logged and never surface to the caller.
func (n *notifier) Announce(ctx context.Context, notifications ...*entity.Notification) {
	for _, notification := range notifications {
		count, err := n.notificationRepo.CountUnread(n.transactor.DB(ctx), notification.UserID)
		if err != nil {
			n.log.Warnf("Failed to count unread notifications: %+v", err)
			continue
		}
		if err := n.hub.Publish(ctx, notification.UserID, RealtimeEvent{
			UnreadCount:  count,
			Notification: notification,
		}); err != nil {
			n.log.Warnf("Failed to publish realtime notification: %+v", err)
		}
	}
}

func (n *notifier) RefreshUnreadCount(ctx context.Context, userID uuid.UUID) {
	count, err := n.notificationRepo.CountUnread(n.transactor.DB(ctx), userID)
	if err != nil {
		n.log.Warnf("Failed to count unread notifications: %+v", err)
		return
	}
	if err := n.hub.Publish(ctx, userID, RealtimeEvent{UnreadCount: count}); err != nil {
		n.log.Warnf("Failed to publish unread count: %+v", err)
	}
}
