package handler

import (
	"net/http"

	"theralink/internal/delivery/dto"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

type CardHandler struct {
	cardUsecase usecase.CardUsecase
	validator   *validator.CustomValidator
}

func NewCardHandler(cardUsecase usecase.CardUsecase, validator *validator.CustomValidator) *CardHandler {
	return &CardHandler{
		cardUsecase: cardUsecase,
		validator:   validator,
	}
}

func (h *CardHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.AddCardRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	card, err := h.cardUsecase.AddCard(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidCard:
			response.ValidationError(w, map[string]string{"card_number": err.Error()})
		case usecase.ErrCardExpired:
			response.ValidationError(w, map[string]string{"expiry_year": err.Error()})
		default:
			response.InternalServerError(w, "Failed to add card")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Card added successfully", card)
}

func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	cards, err := h.cardUsecase.ListCards(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get cards")
		return
	}

	response.Success(w, http.StatusOK, "Cards retrieved successfully", cards)
}

func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	cardID, ok := pathUUID(w, r, "id", "card")
	if !ok {
		return
	}

	if err := h.cardUsecase.DeleteCard(r.Context(), userID, cardID); err != nil {
		switch err {
		case usecase.ErrCardNotFound:
			response.NotFound(w, "Card not found")
		default:
			response.InternalServerError(w, "Failed to delete card")
		}
		return
	}

	response.Success(w, http.StatusOK, "Card deleted successfully", nil)
}
