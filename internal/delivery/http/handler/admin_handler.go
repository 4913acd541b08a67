package handler

import (
	"net/http"

	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

type AdminHandler struct {
	adminUsecase        usecase.AdminUsecase
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, notificationUsecase usecase.NotificationUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		adminUsecase:        adminUsecase,
		notificationUsecase: notificationUsecase,
		validator:           validator,
	}
}

func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.adminUsecase.GetDashboard(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to build dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

// ListUsers handles user management. Query: role, search, page, limit
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.UserFilter{
		RoleID: entity.RoleIDByName(q.Get("role")),
		Search: q.Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 0),
	}

	users, err := h.adminUsecase.ListUsers(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get users")
		return
	}

	totalPages := int((users.Total + int64(users.Limit) - 1) / int64(users.Limit))
	response.SuccessWithMeta(w, http.StatusOK, "Users retrieved successfully", users.Users, &response.Meta{
		Page:       users.Page,
		Limit:      users.Limit,
		Total:      users.Total,
		TotalPages: totalPages,
	})
}

// Broadcast queues a notification for every active user in the audience.
func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.BroadcastRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.notificationUsecase.Broadcast(r.Context(), adminID, &req)
	if err != nil {
		switch err {
		case usecase.ErrUnknownAudience:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to queue broadcast")
		}
		return
	}

	response.Success(w, http.StatusAccepted, "Broadcast queued", result)
}
