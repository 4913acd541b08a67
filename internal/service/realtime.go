package service

import (
	"context"
	"encoding/json"
	"sync"

	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RealtimeEvent is pushed to a user's channel whenever their notifications change.
type RealtimeEvent struct {
	UnreadCount  int64                `json:"unread_count"`
	Notification *entity.Notification `json:"notification,omitempty"`
}

type RealtimeHub interface {
	Publish(ctx context.Context, userID uuid.UUID, event RealtimeEvent) error
	// Subscribe returns a channel of raw JSON events and a close func.
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error)
}

type redisRealtimeHub struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRealtimeHub(client *redis.Client, log *logrus.Logger) RealtimeHub {
	return &redisRealtimeHub{client: client, log: log}
}

func notificationChannel(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

func (h *redisRealtimeHub) Publish(ctx context.Context, userID uuid.UUID, event RealtimeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, notificationChannel(userID), payload).Err()
}

func (h *redisRealtimeHub) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error) {
	pubsub := h.client.Subscribe(ctx, notificationChannel(userID))
	// Wait for the subscription to be confirmed before handing out the channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	closeFn := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				h.log.Warnf("Failed to close realtime subscription: %+v", err)
			}
		})
	}

	return out, closeFn, nil
}
