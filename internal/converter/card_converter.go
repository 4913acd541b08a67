package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
)

func CardToResponse(c *entity.PaymentCard) *dto.CardResponse {
	if c == nil {
		return nil
	}
	return &dto.CardResponse{
		ID:          c.ID,
		Last4:       c.Last4,
		CardType:    c.CardType,
		HolderName:  c.HolderName,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		CreatedAt:   c.CreatedAt,
	}
}

func CardsToResponses(cards []entity.PaymentCard) []dto.CardResponse {
	responses := make([]dto.CardResponse, len(cards))
	for i := range cards {
		responses[i] = *CardToResponse(&cards[i])
	}
	return responses
}
