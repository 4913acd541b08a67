package usecase

import (
	"context"
	"time"

	"theralink/internal/domain/entity"
	"theralink/internal/infrastructure/queue"

	"github.com/sirupsen/logrus"
)

// scheduleReminder enqueues the pre-session reminder for a scheduled
// appointment. Sessions already started get none; a lead time that has
// already passed fires immediately.
func scheduleReminder(ctx context.Context, log *logrus.Logger, enqueuer queue.TaskEnqueuer, appointment *entity.Appointment, lead time.Duration, now time.Time) {
	if appointment.Status != entity.AppointmentScheduled || !appointment.StartTime.After(now) {
		return
	}

	fireAt := appointment.StartTime.Add(-lead)
	if fireAt.Before(now) {
		fireAt = now
	}

	if _, err := enqueuer.EnqueueReminder(ctx, queue.ReminderPayload{AppointmentID: appointment.ID}, fireAt); err != nil {
		log.Warnf("Failed to enqueue appointment reminder: %+v", err)
	}
}
