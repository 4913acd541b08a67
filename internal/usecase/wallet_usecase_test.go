package usecase

import (
	"context"
	"fmt"
	"testing"

	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/infrastructure/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDClient, "Ada Client")
	uc := env.walletUsecase()

	_, err := uc.TopUp(context.Background(), user.ID, user.Email, &dto.TopUpRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Empty(t, env.gateway.initRequests)
}

func TestTopUpRecordsPendingDeposit(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDClient, "Ada Client")
	uc := env.walletUsecase()

	res, err := uc.TopUp(context.Background(), user.ID, user.Email, &dto.TopUpRequest{
		Amount:      decimal.RequireFromString("2500.50"),
		CallbackURL: "https://app.example.com/wallet/return",
	})
	require.NoError(t, err)

	assert.Equal(t, "stub", res.Provider)
	assert.NotEmpty(t, res.AuthorizationURL)
	require.Len(t, env.gateway.initRequests, 1)
	assert.EqualValues(t, 250050, env.gateway.initRequests[0].AmountMinor)
	assert.Equal(t, "https://app.example.com/wallet/return", env.gateway.initRequests[0].CallbackURL)

	txn := env.store.transactions[res.Reference]
	assert.Equal(t, entity.TransactionDeposit, txn.TransactionType)
	assert.Equal(t, entity.TransactionPending, txn.Status)
}

func TestWithdrawCompletesPayout(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDTherapist, "Tunde Therapist")
	env.store.setBalance(user.ID, "10000")
	uc := env.walletUsecase()

	res, err := uc.Withdraw(context.Background(), user.ID, &dto.WithdrawRequest{
		Amount:    decimal.RequireFromString("4000"),
		Recipient: "RCP_123",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransactionCompleted), res.Status)
	assert.Equal(t, string(entity.TransactionPayout), res.TransactionType)
	assert.True(t, decimal.RequireFromString("6000").Equal(env.store.balance(user.ID)))
	assert.Contains(t, env.publisher.events, "wallet.withdrawn")
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDTherapist, "Tunde Therapist")
	env.store.setBalance(user.ID, "1000")
	uc := env.walletUsecase()

	_, err := uc.Withdraw(context.Background(), user.ID, &dto.WithdrawRequest{
		Amount:    decimal.RequireFromString("4000"),
		Recipient: "RCP_123",
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, env.store.transactions)
	assert.True(t, decimal.RequireFromString("1000").Equal(env.store.balance(user.ID)))
}

func TestWithdrawGatewayFailureCompensates(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDTherapist, "Tunde Therapist")
	env.store.setBalance(user.ID, "10000")
	env.gateway.transferErr = gateway.ErrPaymentDeclined
	uc := env.walletUsecase()

	_, err := uc.Withdraw(context.Background(), user.ID, &dto.WithdrawRequest{
		Amount:    decimal.RequireFromString("4000"),
		Recipient: "RCP_123",
	})
	assert.ErrorIs(t, err, gateway.ErrPaymentDeclined)

	assert.True(t, decimal.RequireFromString("10000").Equal(env.store.balance(user.ID)))
	require.Len(t, env.store.transactions, 1)
	for _, txn := range env.store.transactions {
		assert.Equal(t, entity.TransactionFailed, txn.Status)
	}
}

func TestWithdrawAmbiguousGatewayFailureStaysPending(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDTherapist, "Tunde Therapist")
	env.store.setBalance(user.ID, "10000")
	env.gateway.transferErr = fmt.Errorf("paystack transfer: %w: %w", gateway.ErrUnavailable, context.DeadlineExceeded)
	uc := env.walletUsecase()

	res, err := uc.Withdraw(context.Background(), user.ID, &dto.WithdrawRequest{
		Amount:    decimal.RequireFromString("4000"),
		Recipient: "RCP_123",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.TransactionPending), res.Status)
	assert.True(t, decimal.RequireFromString("6000").Equal(env.store.balance(user.ID)))
	require.Len(t, env.store.transactions, 1)
	for _, txn := range env.store.transactions {
		assert.Equal(t, entity.TransactionPending, txn.Status)
	}
	assert.NotContains(t, env.publisher.events, "wallet.withdrawn")
}

func TestWithdrawDeclineRefundsAfterClientDisconnect(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDTherapist, "Tunde Therapist")
	env.store.setBalance(user.ID, "10000")

	ctx, cancel := context.WithCancel(context.Background())
	env.gateway.onTransfer = cancel
	env.gateway.transferErr = fmt.Errorf("recipient rejected: %w", gateway.ErrPaymentDeclined)
	uc := env.walletUsecase()

	_, err := uc.Withdraw(ctx, user.ID, &dto.WithdrawRequest{
		Amount:    decimal.RequireFromString("4000"),
		Recipient: "RCP_123",
	})
	assert.ErrorIs(t, err, gateway.ErrPaymentDeclined)

	assert.True(t, decimal.RequireFromString("10000").Equal(env.store.balance(user.ID)))
	for _, txn := range env.store.transactions {
		assert.Equal(t, entity.TransactionFailed, txn.Status)
	}
}

func TestWithdrawCompletesAfterClientDisconnect(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDTherapist, "Tunde Therapist")
	env.store.setBalance(user.ID, "10000")

	ctx, cancel := context.WithCancel(context.Background())
	env.gateway.onTransfer = cancel
	uc := env.walletUsecase()

	res, err := uc.Withdraw(ctx, user.ID, &dto.WithdrawRequest{
		Amount:    decimal.RequireFromString("4000"),
		Recipient: "RCP_123",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransactionCompleted), res.Status)
	assert.True(t, decimal.RequireFromString("6000").Equal(env.store.balance(user.ID)))
}

func TestGetWalletCreatesEmptyWallet(t *testing.T) {
	env := newTestEnv()
	user := env.store.addProfile(entity.RoleIDClient, "Ada Client")
	uc := env.walletUsecase()

	res, err := uc.GetWallet(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, res.Balance.IsZero())
	assert.Equal(t, "NGN", res.Currency)
}
