package usecase

import (
	"context"
	"errors"
	"fmt"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/infrastructure/gateway"
	"theralink/internal/infrastructure/messaging"
	"theralink/internal/service"
	"theralink/pkg/money"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultTransactionLimit = 50

type WalletUsecase interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*dto.WalletResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) (*dto.TransactionListResponse, error)
	TopUp(ctx context.Context, userID uuid.UUID, email string, req *dto.TopUpRequest) (*dto.CheckoutResponse, error)
	Withdraw(ctx context.Context, userID uuid.UUID, req *dto.WithdrawRequest) (*dto.TransactionResponse, error)
}

type walletUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	paymentGateway  gateway.PaymentGateway
	notifier        service.Notifier
	publisher       messaging.EventPublisher
	auditService    service.AuditService
	currency        string
	callbackURL     string
}

func NewWalletUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	paymentGateway gateway.PaymentGateway,
	notifier service.Notifier,
	publisher messaging.EventPublisher,
	auditService service.AuditService,
	currency string,
	callbackURL string,
) WalletUsecase {
	return &walletUsecase{
		transactor:      transactor,
		log:             log,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		paymentGateway:  paymentGateway,
		notifier:        notifier,
		publisher:       publisher,
		auditService:    auditService,
		currency:        currency,
		callbackURL:     callbackURL,
	}
}

func (u *walletUsecase) GetWallet(ctx context.Context, userID uuid.UUID) (*dto.WalletResponse, error) {
	wallet, err := u.walletRepo.FindOrCreate(u.transactor.DB(ctx), userID, u.currency)
	if err != nil {
		u.log.Warnf("Failed to load wallet: %+v", err)
		return nil, err
	}
	return converter.WalletToResponse(wallet), nil
}

func (u *walletUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) (*dto.TransactionListResponse, error) {
	if limit <= 0 || limit > defaultTransactionLimit {
		limit = defaultTransactionLimit
	}

	transactions, err := u.transactionRepo.FindByUserID(u.transactor.DB(ctx), userID, limit)
	if err != nil {
		u.log.Warnf("Failed to list transactions: %+v", err)
		return nil, err
	}

	return &dto.TransactionListResponse{
		Transactions: converter.TransactionsToResponses(transactions),
		Total:        len(transactions),
	}, nil
}

// TopUp opens a hosted checkout for funding the wallet. The balance changes
// only once the returned reference is settled.
func (u *walletUsecase) TopUp(ctx context.Context, userID uuid.UUID, email string, req *dto.TopUpRequest) (*dto.CheckoutResponse, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	callbackURL := u.callbackURL
	if req.CallbackURL != "" {
		callbackURL = req.CallbackURL
	}

	reference := newReference("dep")
	result, err := u.paymentGateway.Initialize(ctx, gateway.InitializeRequest{
		Email:       email,
		AmountMinor: money.ToMinorUnits(amount),
		Currency:    u.currency,
		Reference:   reference,
		CallbackURL: callbackURL,
		Description: "Wallet top-up",
		Metadata: map[string]string{
			"purpose": purposeWalletTopUp,
			"user_id": userID.String(),
		},
	})
	if err != nil {
		u.log.Warnf("Failed to initialize wallet top-up: %+v", err)
		return nil, err
	}
	if result.Reference != "" {
		reference = result.Reference
	}

	txn := &entity.Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		Amount:          amount,
		Currency:        u.currency,
		TransactionType: entity.TransactionDeposit,
		PaymentMethod:   entity.PaymentMethodCard,
		Reference:       reference,
		Status:          entity.TransactionPending,
		Description:     "Wallet top-up",
	}
	if err := u.transactionRepo.Create(u.transactor.DB(ctx), txn); err != nil {
		u.log.Warnf("Failed to create pending deposit: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, nil, &userID, entity.AuditActionWalletTopUp, "transaction", txn.ID.String(), map[string]interface{}{
		"amount":    amount.String(),
		"reference": reference,
	})

	return &dto.CheckoutResponse{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        reference,
		Provider:         u.paymentGateway.Name(),
	}, nil
}

// Withdraw reserves the amount with an atomic debit before calling the
// gateway. The debit is given back only when the gateway definitely refused
// the transfer; an ambiguous failure leaves the payout pending for
// reconciliation because the money may already have left.
func (u *walletUsecase) Withdraw(ctx context.Context, userID uuid.UUID, req *dto.WithdrawRequest) (*dto.TransactionResponse, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	txn := &entity.Transaction{
		ID:              uuid.New(),
		UserID:          userID,
		Amount:          amount,
		Currency:        u.currency,
		TransactionType: entity.TransactionPayout,
		PaymentMethod:   entity.PaymentMethodGateway,
		Reference:       newReference("wdr"),
		Status:          entity.TransactionPending,
		Description:     "Withdrawal to " + req.Recipient,
	}

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.walletRepo.Debit(tx, userID, amount)
		if err != nil {
			if isCheckViolation(err, "balance") {
				return ErrInsufficientBalance
			}
			u.log.Warnf("Failed to debit wallet: %+v", err)
			return err
		}
		if affected == 0 {
			return ErrInsufficientBalance
		}

		if err := u.transactionRepo.Create(tx, txn); err != nil {
			u.log.Warnf("Failed to create payout transaction: %+v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, transferErr := u.paymentGateway.Transfer(ctx, gateway.TransferRequest{
		AmountMinor: money.ToMinorUnits(amount),
		Currency:    u.currency,
		Recipient:   req.Recipient,
		Reference:   txn.Reference,
		Reason:      req.Reason,
	})
	if transferErr != nil {
		if !errors.Is(transferErr, gateway.ErrPaymentDeclined) {
			u.log.Errorf("Withdrawal %s outcome unknown, left pending: %+v", txn.Reference, transferErr)
			return converter.TransactionToResponse(txn), nil
		}
		u.log.Warnf("Failed to transfer withdrawal: %+v", transferErr)
		// the refund must land even if the caller has gone away
		if err := u.compensateWithdrawal(context.WithoutCancel(ctx), txn); err != nil {
			u.log.Errorf("Failed to compensate withdrawal %s: %+v", txn.Reference, err)
		}
		return nil, transferErr
	}

	notification := &entity.Notification{
		UserID:    userID,
		Title:     "Withdrawal sent",
		Message:   fmt.Sprintf("%s %s is on its way to your account.", amount.StringFixed(2), u.currency),
		Type:      entity.NotificationTypePayment,
		ActionURL: "/wallet",
	}
	err = u.transactor.WithinTransaction(context.WithoutCancel(ctx), func(tx *gorm.DB) error {
		if _, err := u.transactionRepo.TransitionStatus(tx, txn.Reference, entity.TransactionPending, entity.TransactionCompleted); err != nil {
			u.log.Warnf("Failed to complete payout: %+v", err)
			return err
		}
		return u.notifier.Stage(tx, notification)
	})
	if err != nil {
		// The transfer went out; the payout stays pending for reconciliation
		return nil, err
	}
	txn.Status = entity.TransactionCompleted

	u.notifier.Announce(ctx, notification)
	publishEvent(ctx, u.log, u.publisher, messaging.TopicWallet, userID.String(), messaging.EventWalletWithdrawn, map[string]interface{}{
		"user_id":   userID,
		"amount":    amount,
		"reference": txn.Reference,
	})
	u.auditService.LogCreate(ctx, nil, &userID, entity.AuditActionWalletWithdraw, "transaction", txn.ID.String(), map[string]interface{}{
		"amount":    amount.String(),
		"reference": txn.Reference,
	})

	return converter.TransactionToResponse(txn), nil
}

func (u *walletUsecase) compensateWithdrawal(ctx context.Context, txn *entity.Transaction) error {
	return u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.transactionRepo.TransitionStatus(tx, txn.Reference, entity.TransactionPending, entity.TransactionFailed)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		return u.walletRepo.Credit(tx, txn.UserID, txn.Amount, txn.Currency)
	})
}
