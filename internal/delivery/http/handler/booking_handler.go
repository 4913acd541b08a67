package handler

import (
	"net/http"

	"theralink/internal/delivery/dto"
	"theralink/internal/delivery/http/middleware"
	"theralink/internal/domain/entity"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// CreateBooking handles creating a booking request
// @Summary Request a session
// @Description Client requests a session; a payment intent is created for paid therapists
// @Tags Client - Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /client/bookings [post]
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	booking, err := h.bookingUsecase.CreateBookingRequest(r.Context(), clientID, &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDateFormat, usecase.ErrInvalidTimeFormat:
			response.BadRequest(w, err.Error())
		case usecase.ErrTherapistNotFound:
			response.NotFound(w, "Therapist not found")
		case usecase.ErrTherapistNotBookable:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create booking request")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Booking request created successfully", booking)
}

// ListBookings serves both the client and therapist views; the role decides which side is listed.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	roleID, _ := middleware.GetRoleIDFromContext(r.Context())
	status := entity.BookingStatus(r.URL.Query().Get("status"))

	bookings, err := h.bookingUsecase.ListBookingRequests(r.Context(), userID, roleID, status)
	if err != nil {
		switch err {
		case usecase.ErrActionNotAllowed:
			response.Forbidden(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to get booking requests")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking requests retrieved successfully", bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.GetBookingRequest(r.Context(), userID, bookingID)
	if err != nil {
		h.writeError(w, err, "Failed to get booking request")
		return
	}

	response.Success(w, http.StatusOK, "Booking request retrieved successfully", booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.CancelBookingRequest(r.Context(), clientID, bookingID)
	if err != nil {
		h.writeError(w, err, "Failed to cancel booking request")
		return
	}

	response.Success(w, http.StatusOK, "Booking request cancelled successfully", booking)
}

// AcceptBooking turns a pending request into an appointment.
func (h *BookingHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	therapistID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	result, err := h.bookingUsecase.AcceptBookingRequest(r.Context(), therapistID, bookingID)
	if err != nil {
		h.writeError(w, err, "Failed to accept booking request")
		return
	}

	response.Success(w, http.StatusOK, "Booking request accepted successfully", result)
}

func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	therapistID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	var req dto.RejectBookingRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	booking, err := h.bookingUsecase.RejectBookingRequest(r.Context(), therapistID, bookingID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to reject booking request")
		return
	}

	response.Success(w, http.StatusOK, "Booking request rejected successfully", booking)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrBookingNotFound:
		response.NotFound(w, "Booking request not found")
	case usecase.ErrBookingNotOwned:
		response.Forbidden(w, err.Error())
	case usecase.ErrBookingNotPending:
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
