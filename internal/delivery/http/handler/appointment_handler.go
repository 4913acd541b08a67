package handler

import (
	"net/http"

	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	videoUsecase       usecase.VideoUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, videoUsecase usecase.VideoUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		videoUsecase:       videoUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	status := entity.AppointmentStatus(r.URL.Query().Get("status"))

	appointments, err := h.appointmentUsecase.ListAppointments(r.Context(), userID, status)
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), userID, appointmentID)
	if err != nil {
		h.writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// UpdateStatus lets the therapist complete a session and either party cancel it.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), userID, appointmentID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update appointment status")
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

// GetVideoSession returns the room and widget options for the session page.
func (h *AppointmentHandler) GetVideoSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	session, err := h.videoUsecase.GetOrCreateSession(r.Context(), userID, appointmentID)
	if err != nil {
		h.writeError(w, err, "Failed to prepare video session")
		return
	}

	response.Success(w, http.StatusOK, "Video session ready", session)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrAppointmentNotFound:
		response.NotFound(w, "Appointment not found")
	case usecase.ErrNotParticipant, usecase.ErrActionNotAllowed:
		response.Forbidden(w, err.Error())
	case usecase.ErrInvalidStatusTransition, usecase.ErrAppointmentCancelled:
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
