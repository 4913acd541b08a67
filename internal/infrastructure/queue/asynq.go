package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"theralink/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeNotificationBroadcast = "notification:broadcast"
	TypeAppointmentReminder   = "appointment:reminder"
)

// BroadcastPayload targets every active user when Audience is "all",
// otherwise the role named by Audience.
type BroadcastPayload struct {
	Audience  string    `json:"audience"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	ActionURL string    `json:"action_url,omitempty"`
	SenderID  uuid.UUID `json:"sender_id"`
}

type ReminderPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
}

type TaskEnqueuer interface {
	EnqueueBroadcast(ctx context.Context, payload BroadcastPayload) (string, error)
	// EnqueueReminder is deduplicated per appointment.
	EnqueueReminder(ctx context.Context, payload ReminderPayload, fireAt time.Time) (string, error)
}

func RedisOpt(redisCfg config.RedisConfig, queueCfg config.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       queueCfg.RedisDB,
	}
}

func NewBroadcastTask(payload BroadcastPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationBroadcast, b, asynq.MaxRetry(5), asynq.Timeout(10*time.Minute)), nil
}

func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.AppointmentID.String()),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

type asynqEnqueuer struct {
	client *asynq.Client
}

func NewTaskEnqueuer(client *asynq.Client) TaskEnqueuer {
	return &asynqEnqueuer{client: client}
}

func (e *asynqEnqueuer) EnqueueBroadcast(ctx context.Context, payload BroadcastPayload) (string, error) {
	task, err := NewBroadcastTask(payload)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (e *asynqEnqueuer) EnqueueReminder(ctx context.Context, payload ReminderPayload, fireAt time.Time) (string, error) {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return "", err
	}
	info, err := e.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return "reminder:" + payload.AppointmentID.String(), nil
		}
		return "", err
	}
	return info.ID, nil
}
