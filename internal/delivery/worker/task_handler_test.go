package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/infrastructure/queue"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationUsecase struct {
	processed []queue.BroadcastPayload
	err       error
}

func (f *fakeNotificationUsecase) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) (*dto.NotificationListResponse, error) {
	return nil, nil
}
func (f *fakeNotificationUsecase) GetUnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	return nil, nil
}
func (f *fakeNotificationUsecase) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (*dto.NotificationResponse, error) {
	return nil, nil
}
func (f *fakeNotificationUsecase) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	return nil, nil
}
func (f *fakeNotificationUsecase) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, func(), error) {
	return nil, func() {}, nil
}
func (f *fakeNotificationUsecase) Broadcast(ctx context.Context, senderID uuid.UUID, req *dto.BroadcastRequest) (*dto.BroadcastResponse, error) {
	return nil, nil
}
func (f *fakeNotificationUsecase) ProcessBroadcast(ctx context.Context, payload queue.BroadcastPayload) error {
	f.processed = append(f.processed, payload)
	return f.err
}

type fakeAppointmentUsecase struct {
	reminded []uuid.UUID
}

func (f *fakeAppointmentUsecase) ListAppointments(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentListResponse, error) {
	return nil, nil
}
func (f *fakeAppointmentUsecase) GetAppointment(ctx context.Context, userID, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	return nil, nil
}
func (f *fakeAppointmentUsecase) UpdateStatus(ctx context.Context, userID, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	return nil, nil
}
func (f *fakeAppointmentUsecase) SendReminder(ctx context.Context, appointmentID uuid.UUID) error {
	f.reminded = append(f.reminded, appointmentID)
	return nil
}

func newTestHandler() (*TaskHandler, *fakeNotificationUsecase, *fakeAppointmentUsecase) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	notifications := &fakeNotificationUsecase{}
	appointments := &fakeAppointmentUsecase{}
	return NewTaskHandler(notifications, appointments, log), notifications, appointments
}

func TestMuxRoutesBroadcast(t *testing.T) {
	h, notifications, _ := newTestHandler()
	task, err := queue.NewBroadcastTask(queue.BroadcastPayload{Audience: "all", Title: "Hello", Message: "World", Type: "system"})
	require.NoError(t, err)

	require.NoError(t, h.Mux().ProcessTask(context.Background(), task))
	require.Len(t, notifications.processed, 1)
	assert.Equal(t, "all", notifications.processed[0].Audience)
}

func TestBroadcastErrorIsRetried(t *testing.T) {
	h, notifications, _ := newTestHandler()
	notifications.err = errors.New("db down")
	task, err := queue.NewBroadcastTask(queue.BroadcastPayload{Audience: "client"})
	require.NoError(t, err)

	err = h.HandleBroadcast(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	h, _, appointments := newTestHandler()

	err := h.HandleReminder(context.Background(), asynq.NewTask(queue.TypeAppointmentReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, appointments.reminded)
}

func TestMuxRoutesReminder(t *testing.T) {
	h, _, appointments := newTestHandler()
	id := uuid.New()
	task, _, err := queue.NewReminderTask(queue.ReminderPayload{AppointmentID: id}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, h.Mux().ProcessTask(context.Background(), task))
	assert.Equal(t, []uuid.UUID{id}, appointments.reminded)
}
