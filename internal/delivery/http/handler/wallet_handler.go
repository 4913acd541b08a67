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

type WalletHandler struct {
	walletUsecase usecase.WalletUsecase
	validator     *validator.CustomValidator
}

func NewWalletHandler(walletUsecase usecase.WalletUsecase, validator *validator.CustomValidator) *WalletHandler {
	return &WalletHandler{
		walletUsecase: walletUsecase,
		validator:     validator,
	}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUsecase.GetWallet(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get wallet")
		return
	}

	response.Success(w, http.StatusOK, "Wallet retrieved successfully", wallet)
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	transactions, err := h.walletUsecase.ListTransactions(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		response.InternalServerError(w, "Failed to get transactions")
		return
	}

	response.Success(w, http.StatusOK, "Transactions retrieved successfully", transactions)
}

// TopUp starts a hosted checkout; the wallet is credited only after verification.
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	email, _ := middleware.GetUserEmailFromContext(r.Context())

	var req dto.TopUpRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	checkout, err := h.walletUsecase.TopUp(r.Context(), userID, email, &req)
	if err != nil {
		writePaymentError(w, err, "Failed to start top-up")
		return
	}

	response.Success(w, http.StatusOK, "Top-up initialized successfully", checkout)
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	payout, err := h.walletUsecase.Withdraw(r.Context(), userID, &req)
	if err != nil {
		writePaymentError(w, err, "Failed to withdraw")
		return
	}

	if payout.Status == string(entity.TransactionPending) {
		response.Success(w, http.StatusAccepted, "Withdrawal is awaiting confirmation from the payment provider", payout)
		return
	}

	response.Success(w, http.StatusOK, "Withdrawal completed successfully", payout)
}
