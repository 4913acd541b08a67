package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"theralink/internal/usecase"
	"theralink/pkg/response"

	"github.com/sirupsen/logrus"
)

const streamHeartbeat = 25 * time.Second

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	log                 *logrus.Logger
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		log:                 log,
	}
}

// ListNotifications handles the inbox. Query: unread=true, limit
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	notifications, err := h.notificationUsecase.ListNotifications(r.Context(), userID, unreadOnly, queryInt(r, "limit", 0))
	if err != nil {
		response.InternalServerError(w, "Failed to get notifications")
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	count, err := h.notificationUsecase.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get unread count")
		return
	}

	response.Success(w, http.StatusOK, "Unread count retrieved successfully", count)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := pathUUID(w, r, "id", "notification")
	if !ok {
		return
	}

	notification, err := h.notificationUsecase.MarkAsRead(r.Context(), userID, notificationID)
	if err != nil {
		switch err {
		case usecase.ErrNotificationNotFound:
			response.NotFound(w, "Notification not found")
		default:
			response.InternalServerError(w, "Failed to mark notification as read")
		}
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", notification)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	count, err := h.notificationUsecase.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to mark notifications as read")
		return
	}

	response.Success(w, http.StatusOK, "All notifications marked as read", count)
}

// Stream pushes realtime events as server-sent events until the client goes away.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming is not supported")
		return
	}

	events, closeFn, err := h.notificationUsecase.Subscribe(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to subscribe to notifications")
		return
	}
	defer closeFn()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", event); err != nil {
				h.log.Debugf("Notification stream for %s closed: %v", userID, err)
				return
			}
			flusher.Flush()
		}
	}
}
