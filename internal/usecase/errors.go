package usecase

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrAccountInactive    = errors.New("account is inactive")

	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")

	ErrTherapistNotFound    = errors.New("therapist not found")
	ErrNotAProvider         = errors.New("user is not a therapist or friend")
	ErrTherapistNotBookable = errors.New("therapist has not set a session rate yet")

	ErrBookingNotFound   = errors.New("booking request not found")
	ErrBookingNotOwned   = errors.New("booking request does not belong to you")
	ErrBookingNotPending = errors.New("booking request is no longer pending")

	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrNotParticipant          = errors.New("you are not a participant of this appointment")
	ErrActionNotAllowed        = errors.New("action not allowed for your role")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrAppointmentCancelled    = errors.New("appointment has been cancelled")

	ErrPaymentNotRequired  = errors.New("appointment is not awaiting payment")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentPending      = errors.New("payment has not completed yet")
	ErrAmountMismatch      = errors.New("paid amount does not match transaction amount")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnknownAudience      = errors.New("unknown broadcast audience")

	ErrCardNotFound = errors.New("card not found")
	ErrInvalidCard  = errors.New("invalid card number")
	ErrCardExpired  = errors.New("card has expired")

	ErrAuditLogNotFound = errors.New("audit log not found")
)

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	return hasPgCode(err, "23505", constraintName)
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	return hasPgCode(err, "23503", constraintName)
}

// isCheckViolation catches the wallets balance >= 0 constraint
func isCheckViolation(err error, constraintName string) bool {
	return hasPgCode(err, "23514", constraintName)
}

func hasPgCode(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return false
}
