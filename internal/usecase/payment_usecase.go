package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/infrastructure/gateway"
	"theralink/internal/infrastructure/messaging"
	"theralink/internal/infrastructure/queue"
	"theralink/internal/service"
	"theralink/pkg/money"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	purposeSessionPayment = "session_payment"
	purposeWalletTopUp    = "wallet_top_up"
)

type PaymentUsecase interface {
	GetPaymentSummary(ctx context.Context, clientID, appointmentID uuid.UUID) (*dto.PaymentSummaryResponse, error)
	PayWithWallet(ctx context.Context, clientID, appointmentID uuid.UUID) (*dto.PaymentResultResponse, error)
	PayWithCard(ctx context.Context, clientID uuid.UUID, email string, appointmentID uuid.UUID, req *dto.PayWithCardRequest) (*dto.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, reference string) (*dto.PaymentResultResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, header http.Header) error
	SettleReference(ctx context.Context, reference string) (*dto.PaymentResultResponse, error)
}

type paymentUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	intentRepo      repository.PaymentIntentRepository
	paymentGateway  gateway.PaymentGateway
	notifier        service.Notifier
	publisher       messaging.EventPublisher
	enqueuer        queue.TaskEnqueuer
	auditService    service.AuditService
	currency        string
	callbackURL     string
	reminderLead    time.Duration
	now             func() time.Time
}

func NewPaymentUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	intentRepo repository.PaymentIntentRepository,
	paymentGateway gateway.PaymentGateway,
	notifier service.Notifier,
	publisher messaging.EventPublisher,
	enqueuer queue.TaskEnqueuer,
	auditService service.AuditService,
	currency string,
	callbackURL string,
	reminderLead time.Duration,
) PaymentUsecase {
	return &paymentUsecase{
		transactor:      transactor,
		log:             log,
		appointmentRepo: appointmentRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		intentRepo:      intentRepo,
		paymentGateway:  paymentGateway,
		notifier:        notifier,
		publisher:       publisher,
		enqueuer:        enqueuer,
		auditService:    auditService,
		currency:        currency,
		callbackURL:     callbackURL,
		reminderLead:    reminderLead,
		now:             time.Now,
	}
}

func (u *paymentUsecase) GetPaymentSummary(ctx context.Context, clientID, appointmentID uuid.UUID) (*dto.PaymentSummaryResponse, error) {
	appointment, err := u.findClientAppointment(ctx, clientID, appointmentID)
	if err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.FindOrCreate(u.transactor.DB(ctx), clientID, u.currency)
	if err != nil {
		u.log.Warnf("Failed to load wallet: %+v", err)
		return nil, err
	}

	return &dto.PaymentSummaryResponse{
		AppointmentID: appointment.ID,
		Amount:        appointment.Amount,
		Currency:      u.currency,
		WalletBalance: wallet.Balance,
		WalletPayable: appointment.Status == entity.AppointmentAwaitingPayment && wallet.Balance.GreaterThanOrEqual(appointment.Amount),
		Status:        string(appointment.Status),
	}, nil
}

// PayWithWallet settles an appointment from the client's balance. The
// balance check up front is advisory; the conditional debit is what counts.
func (u *paymentUsecase) PayWithWallet(ctx context.Context, clientID, appointmentID uuid.UUID) (*dto.PaymentResultResponse, error) {
	appointment, err := u.findPayableAppointment(ctx, clientID, appointmentID)
	if err != nil {
		return nil, err
	}

	wallet, err := u.walletRepo.FindOrCreate(u.transactor.DB(ctx), clientID, u.currency)
	if err != nil {
		u.log.Warnf("Failed to load wallet: %+v", err)
		return nil, err
	}
	if wallet.Balance.LessThan(appointment.Amount) {
		return nil, ErrInsufficientBalance
	}

	txn := &entity.Transaction{
		ID:              uuid.New(),
		UserID:          clientID,
		TherapistID:     &appointment.TherapistID,
		AppointmentID:   &appointment.ID,
		Amount:          appointment.Amount,
		Currency:        u.currency,
		TransactionType: entity.TransactionPayment,
		PaymentMethod:   entity.PaymentMethodWallet,
		Reference:       newReference("wal"),
		Status:          entity.TransactionCompleted,
		Description:     "Session payment from wallet",
	}

	var notifications []*entity.Notification
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.walletRepo.Debit(tx, clientID, appointment.Amount)
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
			u.log.Warnf("Failed to create transaction: %+v", err)
			return err
		}

		scheduled, staged, err := u.applySessionPayment(tx, appointment, txn)
		if err != nil {
			return err
		}
		if !scheduled {
			return ErrPaymentNotRequired
		}
		notifications = staged
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.afterSessionPaid(ctx, appointment, txn, notifications)
	u.auditService.LogCreate(ctx, nil, &clientID, entity.AuditActionPaymentWallet, "transaction", txn.ID.String(), map[string]interface{}{
		"appointment_id": appointment.ID,
		"amount":         txn.Amount.String(),
	})

	return &dto.PaymentResultResponse{Transaction: *converter.TransactionToResponse(txn)}, nil
}

// PayWithCard opens a hosted checkout. The pending transaction it records
// completes only through VerifyPayment or a signed webhook.
func (u *paymentUsecase) PayWithCard(ctx context.Context, clientID uuid.UUID, email string, appointmentID uuid.UUID, req *dto.PayWithCardRequest) (*dto.CheckoutResponse, error) {
	appointment, err := u.findPayableAppointment(ctx, clientID, appointmentID)
	if err != nil {
		return nil, err
	}

	callbackURL := u.callbackURL
	if req.CallbackURL != "" {
		callbackURL = req.CallbackURL
	}

	reference := newReference("pay")
	result, err := u.paymentGateway.Initialize(ctx, gateway.InitializeRequest{
		Email:       email,
		AmountMinor: money.ToMinorUnits(appointment.Amount),
		Currency:    u.currency,
		Reference:   reference,
		CallbackURL: callbackURL,
		Description: "Therapy session payment",
		Metadata: map[string]string{
			"purpose":        purposeSessionPayment,
			"appointment_id": appointment.ID.String(),
		},
	})
	if err != nil {
		u.log.Warnf("Failed to initialize card payment: %+v", err)
		return nil, err
	}
	if result.Reference != "" {
		reference = result.Reference
	}

	txn := &entity.Transaction{
		ID:              uuid.New(),
		UserID:          clientID,
		TherapistID:     &appointment.TherapistID,
		AppointmentID:   &appointment.ID,
		Amount:          appointment.Amount,
		Currency:        u.currency,
		TransactionType: entity.TransactionPayment,
		PaymentMethod:   entity.PaymentMethodCard,
		Reference:       reference,
		Status:          entity.TransactionPending,
		Description:     "Session payment by card",
	}
	if err := u.transactionRepo.Create(u.transactor.DB(ctx), txn); err != nil {
		u.log.Warnf("Failed to create pending transaction: %+v", err)
		return nil, err
	}

	return &dto.CheckoutResponse{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        reference,
		Provider:         u.paymentGateway.Name(),
	}, nil
}

func (u *paymentUsecase) VerifyPayment(ctx context.Context, userID uuid.UUID, reference string) (*dto.PaymentResultResponse, error) {
	txn, err := u.transactionRepo.FindByReference(u.transactor.DB(ctx), reference)
	if err != nil {
		u.log.Warnf("Failed to find transaction: %+v", err)
		return nil, err
	}
	if txn == nil || txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}

	return u.SettleReference(ctx, reference)
}

// HandleWebhook settles the reference a signed gateway event points at.
// Events for unknown or still-pending references are acknowledged and ignored.
func (u *paymentUsecase) HandleWebhook(ctx context.Context, payload []byte, header http.Header) error {
	event, err := u.paymentGateway.ParseWebhook(payload, header)
	if err != nil {
		return err
	}
	if event.Reference == "" {
		return nil
	}

	_, err = u.SettleReference(ctx, event.Reference)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrPaymentPending):
		u.log.Infof("Ignoring %s webhook for reference %s: %v", event.Type, event.Reference, err)
		return nil
	default:
		return err
	}
}

// SettleReference is idempotent: the pending -> completed update only
// succeeds once per reference, and effects are applied only by that winner.
func (u *paymentUsecase) SettleReference(ctx context.Context, reference string) (*dto.PaymentResultResponse, error) {
	db := u.transactor.DB(ctx)

	txn, err := u.transactionRepo.FindByReference(db, reference)
	if err != nil {
		u.log.Warnf("Failed to find transaction: %+v", err)
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	// Payouts and refunds are never confirmed through checkout verification
	if txn.Status != entity.TransactionPending || !isGatewaySettled(txn) {
		return &dto.PaymentResultResponse{Transaction: *converter.TransactionToResponse(txn), AlreadySettled: true}, nil
	}

	verified, err := u.paymentGateway.Verify(ctx, reference)
	if err != nil {
		u.log.Warnf("Failed to verify payment with gateway: %+v", err)
		return nil, err
	}

	switch {
	case verified.Status == gateway.StatusPending:
		return nil, ErrPaymentPending
	case !verified.Paid():
		return u.markFailed(ctx, txn)
	case verified.AmountMinor != money.ToMinorUnits(txn.Amount):
		u.log.Warnf("Failed to settle %s: gateway reported %d minor units, expected %d", reference, verified.AmountMinor, money.ToMinorUnits(txn.Amount))
		return nil, ErrAmountMismatch
	}

	var (
		settled       bool
		notifications []*entity.Notification
		appointment   *entity.Appointment
	)
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.transactionRepo.TransitionStatus(tx, reference, entity.TransactionPending, entity.TransactionCompleted)
		if err != nil {
			u.log.Warnf("Failed to complete transaction: %+v", err)
			return err
		}
		if affected == 0 {
			return nil
		}
		settled = true

		switch txn.TransactionType {
		case entity.TransactionDeposit:
			notifications, err = u.applyDeposit(tx, txn)
			return err
		case entity.TransactionPayment:
			appointment, notifications, err = u.applyCardPayment(tx, txn)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	txn, err = u.transactionRepo.FindByReference(db, reference)
	if err != nil {
		u.log.Warnf("Failed to reload transaction: %+v", err)
		return nil, err
	}
	if !settled {
		return &dto.PaymentResultResponse{Transaction: *converter.TransactionToResponse(txn), AlreadySettled: true}, nil
	}

	switch {
	case txn.TransactionType == entity.TransactionDeposit:
		u.notifier.Announce(ctx, notifications...)
		publishEvent(ctx, u.log, u.publisher, messaging.TopicWallet, txn.UserID.String(), messaging.EventWalletCredited, map[string]interface{}{
			"user_id":   txn.UserID,
			"amount":    txn.Amount,
			"reference": txn.Reference,
		})
	case appointment != nil && appointment.Status == entity.AppointmentScheduled:
		u.afterSessionPaid(ctx, appointment, txn, notifications)
	default:
		u.notifier.Announce(ctx, notifications...)
	}
	u.auditService.LogUpdate(ctx, nil, &txn.UserID, entity.AuditActionPaymentSettle, "transaction", txn.ID.String(),
		map[string]interface{}{"status": entity.TransactionPending},
		map[string]interface{}{"status": entity.TransactionCompleted, "reference": txn.Reference})

	return &dto.PaymentResultResponse{Transaction: *converter.TransactionToResponse(txn)}, nil
}

func (u *paymentUsecase) markFailed(ctx context.Context, txn *entity.Transaction) (*dto.PaymentResultResponse, error) {
	affected, err := u.transactionRepo.TransitionStatus(u.transactor.DB(ctx), txn.Reference, entity.TransactionPending, entity.TransactionFailed)
	if err != nil {
		u.log.Warnf("Failed to mark transaction failed: %+v", err)
		return nil, err
	}
	if affected == 0 {
		// Someone else settled it first; report the stored outcome
		current, err := u.transactionRepo.FindByReference(u.transactor.DB(ctx), txn.Reference)
		if err != nil {
			return nil, err
		}
		return &dto.PaymentResultResponse{Transaction: *converter.TransactionToResponse(current), AlreadySettled: true}, nil
	}

	txn.Status = entity.TransactionFailed
	publishEvent(ctx, u.log, u.publisher, messaging.TopicPayment, txn.Reference, messaging.EventPaymentFailed, map[string]interface{}{
		"reference": txn.Reference,
		"user_id":   txn.UserID,
		"type":      txn.TransactionType,
	})
	return &dto.PaymentResultResponse{Transaction: *converter.TransactionToResponse(txn)}, nil
}

func (u *paymentUsecase) applyDeposit(tx *gorm.DB, txn *entity.Transaction) ([]*entity.Notification, error) {
	if err := u.walletRepo.Credit(tx, txn.UserID, txn.Amount, txn.Currency); err != nil {
		u.log.Warnf("Failed to credit wallet: %+v", err)
		return nil, err
	}

	notification := &entity.Notification{
		UserID:    txn.UserID,
		Title:     "Wallet funded",
		Message:   fmt.Sprintf("%s %s was added to your wallet.", txn.Amount.StringFixed(2), txn.Currency),
		Type:      entity.NotificationTypePayment,
		ActionURL: "/wallet",
	}
	if err := u.notifier.Stage(tx, notification); err != nil {
		return nil, err
	}
	return []*entity.Notification{notification}, nil
}

// applyCardPayment schedules the appointment a card payment was for. When
// the appointment has moved on (for example it was cancelled while the
// checkout was open) the money goes to the client's wallet instead.
func (u *paymentUsecase) applyCardPayment(tx *gorm.DB, txn *entity.Transaction) (*entity.Appointment, []*entity.Notification, error) {
	if txn.AppointmentID == nil {
		return nil, nil, u.refundToWallet(tx, txn, nil)
	}

	appointment, err := u.appointmentRepo.FindByID(tx, *txn.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, nil, err
	}
	if appointment == nil {
		return nil, nil, u.refundToWallet(tx, txn, nil)
	}

	scheduled, notifications, err := u.applySessionPayment(tx, appointment, txn)
	if err != nil {
		return nil, nil, err
	}
	if scheduled {
		return appointment, notifications, nil
	}

	refund := &entity.Notification{}
	if err := u.refundToWallet(tx, txn, refund); err != nil {
		return nil, nil, err
	}
	return appointment, []*entity.Notification{refund}, nil
}

func (u *paymentUsecase) refundToWallet(tx *gorm.DB, txn *entity.Transaction, notification *entity.Notification) error {
	if err := u.walletRepo.Credit(tx, txn.UserID, txn.Amount, txn.Currency); err != nil {
		u.log.Warnf("Failed to refund to wallet: %+v", err)
		return err
	}

	refund := &entity.Transaction{
		ID:              uuid.New(),
		UserID:          txn.UserID,
		TherapistID:     txn.TherapistID,
		AppointmentID:   txn.AppointmentID,
		Amount:          txn.Amount,
		Currency:        txn.Currency,
		TransactionType: entity.TransactionRefund,
		PaymentMethod:   entity.PaymentMethodWallet,
		Reference:       newReference("ref"),
		Status:          entity.TransactionCompleted,
		Description:     "Refund of " + txn.Reference + " to wallet",
	}
	if err := u.transactionRepo.Create(tx, refund); err != nil {
		u.log.Warnf("Failed to create refund transaction: %+v", err)
		return err
	}

	if notification == nil {
		return nil
	}
	*notification = entity.Notification{
		UserID:    txn.UserID,
		Title:     "Payment refunded",
		Message:   fmt.Sprintf("The appointment was no longer awaiting payment, so %s %s was added to your wallet.", txn.Amount.StringFixed(2), txn.Currency),
		Type:      entity.NotificationTypePayment,
		ActionURL: "/wallet",
	}
	return u.notifier.Stage(tx, notification)
}

// applySessionPayment moves the appointment to scheduled, credits the
// provider and completes the payment intent. scheduled is false when the
// appointment was no longer awaiting payment; nothing is written then.
func (u *paymentUsecase) applySessionPayment(tx *gorm.DB, appointment *entity.Appointment, txn *entity.Transaction) (bool, []*entity.Notification, error) {
	affected, err := u.appointmentRepo.TransitionStatus(tx, appointment.ID, entity.AppointmentAwaitingPayment, entity.AppointmentScheduled, map[string]interface{}{
		"payment_id": txn.ID,
	})
	if err != nil {
		u.log.Warnf("Failed to schedule appointment: %+v", err)
		return false, nil, err
	}
	if affected == 0 {
		return false, nil, nil
	}
	appointment.Status = entity.AppointmentScheduled
	appointment.PaymentID = &txn.ID

	if err := u.walletRepo.Credit(tx, appointment.TherapistID, txn.Amount, txn.Currency); err != nil {
		u.log.Warnf("Failed to credit therapist wallet: %+v", err)
		return false, nil, err
	}

	if appointment.BookingRequestID != nil {
		if _, err := u.intentRepo.TransitionStatus(tx, *appointment.BookingRequestID, entity.PaymentIntentPending, entity.PaymentIntentCompleted); err != nil {
			u.log.Warnf("Failed to complete payment intent: %+v", err)
			return false, nil, err
		}
	}

	when := appointment.StartTime.Format("2006-01-02 15:04")
	notifications := []*entity.Notification{
		{
			UserID:    appointment.ClientID,
			Title:     "Payment successful",
			Message:   fmt.Sprintf("Your payment of %s %s was received. Your session on %s is confirmed.", txn.Amount.StringFixed(2), txn.Currency, when),
			Type:      entity.NotificationTypePayment,
			ActionURL: "/appointments/" + appointment.ID.String(),
		},
		{
			UserID:    appointment.TherapistID,
			Title:     "Session paid",
			Message:   fmt.Sprintf("The session on %s has been paid and is now scheduled.", when),
			Type:      entity.NotificationTypePayment,
			ActionURL: "/appointments/" + appointment.ID.String(),
		},
	}
	if err := u.notifier.Stage(tx, notifications...); err != nil {
		u.log.Warnf("Failed to create payment notifications: %+v", err)
		return false, nil, err
	}

	return true, notifications, nil
}

func (u *paymentUsecase) afterSessionPaid(ctx context.Context, appointment *entity.Appointment, txn *entity.Transaction, notifications []*entity.Notification) {
	u.notifier.Announce(ctx, notifications...)
	publishEvent(ctx, u.log, u.publisher, messaging.TopicPayment, txn.Reference, messaging.EventPaymentCompleted, map[string]interface{}{
		"reference":      txn.Reference,
		"appointment_id": appointment.ID,
		"client_id":      appointment.ClientID,
		"therapist_id":   appointment.TherapistID,
		"amount":         txn.Amount,
		"method":         txn.PaymentMethod,
	})
	scheduleReminder(ctx, u.log, u.enqueuer, appointment, u.reminderLead, u.now())
}

func (u *paymentUsecase) findClientAppointment(ctx context.Context, clientID, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(u.transactor.DB(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.ClientID != clientID {
		return nil, ErrNotParticipant
	}
	return appointment, nil
}

func (u *paymentUsecase) findPayableAppointment(ctx context.Context, clientID, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.findClientAppointment(ctx, clientID, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Status != entity.AppointmentAwaitingPayment {
		return nil, ErrPaymentNotRequired
	}
	return appointment, nil
}

func isGatewaySettled(txn *entity.Transaction) bool {
	return txn.TransactionType == entity.TransactionDeposit ||
		(txn.TransactionType == entity.TransactionPayment && txn.PaymentMethod == entity.PaymentMethodCard)
}
