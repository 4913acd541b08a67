package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"theralink/internal/infrastructure/queue"
	"theralink/internal/usecase"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	notificationUsecase usecase.NotificationUsecase
	appointmentUsecase  usecase.AppointmentUsecase
	log                 *logrus.Logger
}

func NewTaskHandler(notificationUsecase usecase.NotificationUsecase, appointmentUsecase usecase.AppointmentUsecase, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		notificationUsecase: notificationUsecase,
		appointmentUsecase:  appointmentUsecase,
		log:                 log,
	}
}

// Mux routes every task type the worker understands.
func (h *TaskHandler) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeNotificationBroadcast, h.HandleBroadcast)
	mux.HandleFunc(queue.TypeAppointmentReminder, h.HandleReminder)
	return mux
}

func (h *TaskHandler) HandleBroadcast(ctx context.Context, task *asynq.Task) error {
	var payload queue.BroadcastPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.log.Warnf("Invalid broadcast payload: %+v", err)
		// a malformed payload will never succeed
		return fmt.Errorf("decode broadcast payload: %v: %w", err, asynq.SkipRetry)
	}

	return h.notificationUsecase.ProcessBroadcast(ctx, payload)
}

func (h *TaskHandler) HandleReminder(ctx context.Context, task *asynq.Task) error {
	var payload queue.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		h.log.Warnf("Invalid reminder payload: %+v", err)
		return fmt.Errorf("decode reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	h.log.WithField("appointment_id", payload.AppointmentID).Info("Sending session reminder")
	return h.appointmentUsecase.SendReminder(ctx, payload.AppointmentID)
}
