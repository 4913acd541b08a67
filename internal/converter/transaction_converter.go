package converter

import (
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
)

func TransactionToResponse(t *entity.Transaction) *dto.TransactionResponse {
	if t == nil {
		return nil
	}

	return &dto.TransactionResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		TherapistID:     t.TherapistID,
		AppointmentID:   t.AppointmentID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		TransactionType: string(t.TransactionType),
		PaymentMethod:   string(t.PaymentMethod),
		Reference:       t.Reference,
		Status:          string(t.Status),
		Description:     t.Description,
		CreatedAt:       t.CreatedAt,
	}
}

func TransactionsToResponses(list []entity.Transaction) []dto.TransactionResponse {
	responses := make([]dto.TransactionResponse, len(list))
	for i := range list {
		responses[i] = *TransactionToResponse(&list[i])
	}
	return responses
}

func WalletToResponse(w *entity.Wallet) *dto.WalletResponse {
	if w == nil {
		return nil
	}
	return &dto.WalletResponse{
		UserID:   w.UserID,
		Balance:  w.Balance,
		Currency: w.Currency,
	}
}
