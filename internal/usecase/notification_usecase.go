package usecase

import (
	"context"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/infrastructure/queue"
	"theralink/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	AudienceAll = "all"

	defaultNotificationLimit = 50
	defaultBroadcastBatch    = 500
)

type NotificationUsecase interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) (*dto.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (*dto.NotificationResponse, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error)
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error)
	Broadcast(ctx context.Context, senderID uuid.UUID, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error)
	ProcessBroadcast(ctx context.Context, payload queue.BroadcastPayload) error
}

type notificationUsecase struct {
	transactor       repository.Transactor
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	profileRepo      repository.ProfileRepository
	notifier         service.Notifier
	hub              service.RealtimeHub
	enqueuer         queue.TaskEnqueuer
	auditService     service.AuditService
	batchSize        int
}

func NewNotificationUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	notificationRepo repository.NotificationRepository,
	profileRepo repository.ProfileRepository,
	notifier service.Notifier,
	hub service.RealtimeHub,
	enqueuer queue.TaskEnqueuer,
	auditService service.AuditService,
	batchSize int,
) NotificationUsecase {
	if batchSize <= 0 {
		batchSize = defaultBroadcastBatch
	}
	return &notificationUsecase{
		transactor:       transactor,
		log:              log,
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		notifier:         notifier,
		hub:              hub,
		enqueuer:         enqueuer,
		auditService:     auditService,
		batchSize:        batchSize,
	}
}

func (u *notificationUsecase) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) (*dto.NotificationListResponse, error) {
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}
	db := u.transactor.DB(ctx)

	notifications, err := u.notificationRepo.FindByUserID(db, userID, unreadOnly, limit)
	if err != nil {
		u.log.Warnf("Failed to list notifications: %+v", err)
		return nil, err
	}

	unread, err := u.notificationRepo.CountUnread(db, userID)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications: %+v", err)
		return nil, err
	}

	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(notifications),
		Total:         len(notifications),
		UnreadCount:   unread,
	}, nil
}

func (u *notificationUsecase) GetUnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	unread, err := u.notificationRepo.CountUnread(u.transactor.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications: %+v", err)
		return nil, err
	}
	return &dto.UnreadCountResponse{UnreadCount: unread}, nil
}

// MarkAsRead is idempotent. Another user's notification reads as not found.
func (u *notificationUsecase) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (*dto.NotificationResponse, error) {
	db := u.transactor.DB(ctx)

	notification, err := u.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		u.log.Warnf("Failed to find notification: %+v", err)
		return nil, err
	}
	if notification == nil || notification.UserID != userID {
		return nil, ErrNotificationNotFound
	}
	if notification.IsRead {
		return converter.NotificationToResponse(notification), nil
	}

	if _, err := u.notificationRepo.MarkRead(db, notificationID, userID); err != nil {
		u.log.Warnf("Failed to mark notification read: %+v", err)
		return nil, err
	}
	notification.IsRead = true

	u.notifier.RefreshUnreadCount(ctx, userID)
	return converter.NotificationToResponse(notification), nil
}

func (u *notificationUsecase) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	if _, err := u.notificationRepo.MarkAllRead(u.transactor.DB(ctx), userID); err != nil {
		u.log.Warnf("Failed to mark all notifications read: %+v", err)
		return nil, err
	}

	u.notifier.RefreshUnreadCount(ctx, userID)
	return &dto.UnreadCountResponse{UnreadCount: 0}, nil
}

func (u *notificationUsecase) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error) {
	messages, closeFn, err := u.hub.Subscribe(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to subscribe to notifications: %+v", err)
		return nil, nil, err
	}
	return messages, closeFn, nil
}

// Broadcast only enqueues; the worker does the fan-out.
func (u *notificationUsecase) Broadcast(ctx context.Context, senderID uuid.UUID, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error) {
	if _, err := audienceRoleID(req.Audience); err != nil {
		return nil, err
	}

	taskID, err := u.enqueuer.EnqueueBroadcast(ctx, queue.BroadcastPayload{
		Audience:  req.Audience,
		Title:     req.Title,
		Message:   req.Message,
		Type:      entity.NotificationTypeSystem,
		ActionURL: req.ActionURL,
		SenderID:  senderID,
	})
	if err != nil {
		u.log.Warnf("Failed to enqueue broadcast: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, nil, &senderID, entity.AuditActionBroadcast, "notification", taskID, map[string]interface{}{
		"audience": req.Audience,
		"title":    req.Title,
	})

	return &dto.BroadcastResponse{TaskID: taskID, Audience: req.Audience}, nil
}

// ProcessBroadcast pages through recipients by id and inserts one bounded
// batch per transaction.
func (u *notificationUsecase) ProcessBroadcast(ctx context.Context, payload queue.BroadcastPayload) error {
	roleID, err := audienceRoleID(payload.Audience)
	if err != nil {
		return err
	}

	notificationType := payload.Type
	if notificationType == "" {
		notificationType = entity.NotificationTypeSystem
	}

	after := uuid.Nil
	delivered := 0
	for {
		ids, err := u.profileRepo.FindIDsAfter(u.transactor.DB(ctx), roleID, after, u.batchSize)
		if err != nil {
			u.log.Warnf("Failed to page broadcast recipients: %+v", err)
			return err
		}
		if len(ids) == 0 {
			break
		}

		batch := make([]entity.Notification, len(ids))
		for i, id := range ids {
			batch[i] = entity.Notification{
				ID:        uuid.New(),
				UserID:    id,
				Title:     payload.Title,
				Message:   payload.Message,
				Type:      notificationType,
				ActionURL: payload.ActionURL,
			}
		}

		err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
			return u.notificationRepo.CreateBatch(tx, batch, u.batchSize)
		})
		if err != nil {
			u.log.Warnf("Failed to insert broadcast batch: %+v", err)
			return err
		}

		announced := make([]*entity.Notification, len(batch))
		for i := range batch {
			announced[i] = &batch[i]
		}
		u.notifier.Announce(ctx, announced...)

		delivered += len(ids)
		after = ids[len(ids)-1]
		if len(ids) < u.batchSize {
			break
		}
	}

	u.log.Infof("Broadcast to %q delivered to %d users", payload.Audience, delivered)
	return nil
}

// audienceRoleID maps "all" to 0 and role names to their id.
func audienceRoleID(audience string) (int, error) {
	if audience == AudienceAll {
		return 0, nil
	}
	roleID := entity.RoleIDByName(audience)
	if roleID == 0 {
		return 0, ErrUnknownAudience
	}
	return roleID, nil
}
