package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"theralink/internal/delivery/dto"
	"theralink/internal/delivery/http/middleware"
	"theralink/internal/infrastructure/gateway"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

const maxWebhookBytes = 1 << 20

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

// GetPaymentSummary handles the payment page
// @Summary Payment summary
// @Description Amount due, cached wallet balance and whether the wallet can cover it
// @Tags Client - Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /client/appointments/{id}/payment [get]
func (h *PaymentHandler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	summary, err := h.paymentUsecase.GetPaymentSummary(r.Context(), clientID, appointmentID)
	if err != nil {
		writePaymentError(w, err, "Failed to get payment summary")
		return
	}

	response.Success(w, http.StatusOK, "Payment summary retrieved successfully", summary)
}

// PayWithWallet debits the wallet server side; the client never asserts success.
func (h *PaymentHandler) PayWithWallet(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	result, err := h.paymentUsecase.PayWithWallet(r.Context(), clientID, appointmentID)
	if err != nil {
		writePaymentError(w, err, "Failed to pay with wallet")
		return
	}

	response.Success(w, http.StatusOK, "Payment completed successfully", result)
}

func (h *PaymentHandler) PayWithCard(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	email, _ := middleware.GetUserEmailFromContext(r.Context())
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.PayWithCardRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	checkout, err := h.paymentUsecase.PayWithCard(r.Context(), clientID, email, appointmentID, &req)
	if err != nil {
		writePaymentError(w, err, "Failed to start card payment")
		return
	}

	response.Success(w, http.StatusOK, "Checkout initialized successfully", checkout)
}

// VerifyPayment serves both the gateway return URL (GET ?reference=) and the
// POST form used by the frontend.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if r.Method == http.MethodGet {
		req.Reference = r.URL.Query().Get("reference")
		if err := h.validator.Validate(&req); err != nil {
			response.ValidationError(w, h.validator.FormatValidationErrors(err))
			return
		}
	} else if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.paymentUsecase.VerifyPayment(r.Context(), userID, req.Reference)
	if err != nil {
		writePaymentError(w, err, "Failed to verify payment")
		return
	}

	message := "Payment verified successfully"
	if result.AlreadySettled {
		message = "Payment was already settled"
	}
	response.Success(w, http.StatusOK, message, result)
}

// Webhook must see the raw body because the signature covers the exact bytes.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.paymentUsecase.HandleWebhook(r.Context(), payload, r.Header); err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			response.Unauthorized(w, "Invalid signature")
			return
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			response.BadRequest(w, "Invalid payload")
			return
		}
		// Non-2xx makes the gateway retry delivery
		response.InternalServerError(w, "Failed to process webhook")
		return
	}

	response.Success(w, http.StatusOK, "Webhook received", nil)
}

func writePaymentError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound), errors.Is(err, usecase.ErrTransactionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrNotParticipant):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrPaymentNotRequired), errors.Is(err, usecase.ErrPaymentPending):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrInsufficientBalance):
		response.PaymentRequired(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidAmount):
		response.ValidationError(w, map[string]string{"amount": err.Error()})
	case errors.Is(err, usecase.ErrAmountMismatch):
		response.Conflict(w, err.Error())
	case errors.Is(err, gateway.ErrPaymentDeclined):
		response.PaymentRequired(w, "Payment was declined by the gateway")
	case errors.Is(err, gateway.ErrUnavailable):
		response.BadGateway(w, "Payment gateway is unavailable, please try again")
	default:
		response.InternalServerError(w, fallback)
	}
}
