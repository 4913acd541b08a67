package handler

import (
	"net/http"
	"strconv"

	"theralink/internal/delivery/dto"
	"theralink/internal/delivery/http/middleware"
	"theralink/internal/domain/entity"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

type TherapistHandler struct {
	therapistUsecase usecase.TherapistUsecase
	validator        *validator.CustomValidator
}

func NewTherapistHandler(therapistUsecase usecase.TherapistUsecase, validator *validator.CustomValidator) *TherapistHandler {
	return &TherapistHandler{
		therapistUsecase: therapistUsecase,
		validator:        validator,
	}
}

// ListTherapists handles the public directory.
// Query: specialization, name, community (true/false), role (therapist/friend)
func (h *TherapistHandler) ListTherapists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &entity.TherapistFilter{
		Specialization: q.Get("specialization"),
		Name:           q.Get("name"),
	}
	if roleID := entity.RoleIDByName(q.Get("role")); entity.IsProvider(roleID) {
		filter.RoleID = roleID
	}
	if raw := q.Get("community"); raw != "" {
		community, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "community must be true or false")
			return
		}
		filter.Community = &community
	}

	therapists, err := h.therapistUsecase.ListTherapists(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to get therapists")
		return
	}

	response.Success(w, http.StatusOK, "Therapists retrieved successfully", therapists)
}

func (h *TherapistHandler) GetTherapist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "therapist")
	if !ok {
		return
	}

	therapist, err := h.therapistUsecase.GetTherapist(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist not found")
		default:
			response.InternalServerError(w, "Failed to get therapist")
		}
		return
	}

	response.Success(w, http.StatusOK, "Therapist retrieved successfully", therapist)
}

func (h *TherapistHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	therapist, err := h.therapistUsecase.GetOwnProfile(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist profile not found")
		default:
			response.InternalServerError(w, "Failed to get therapist profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Therapist profile retrieved successfully", therapist)
}

func (h *TherapistHandler) UpsertOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())

	var req dto.UpsertTherapistProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	therapist, err := h.therapistUsecase.UpsertOwnProfile(r.Context(), userID, roleID, &req)
	if err != nil {
		switch err {
		case usecase.ErrNotAProvider:
			response.Forbidden(w, err.Error())
		case usecase.ErrInvalidAmount:
			response.ValidationError(w, map[string]string{"hourly_rate": "hourly_rate must not be negative"})
		default:
			response.InternalServerError(w, "Failed to save therapist profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Therapist profile saved successfully", therapist)
}

func (h *TherapistHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAvailabilityRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	therapist, err := h.therapistUsecase.UpdateAvailability(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist profile not found")
		default:
			response.InternalServerError(w, "Failed to update availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", therapist)
}
