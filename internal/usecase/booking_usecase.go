package usecase

import (
	"context"
	"fmt"
	"time"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/infrastructure/messaging"
	"theralink/internal/infrastructure/queue"
	"theralink/internal/service"
	"theralink/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BookingUsecase interface {
	CreateBookingRequest(ctx context.Context, clientID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	AcceptBookingRequest(ctx context.Context, therapistID, bookingID uuid.UUID) (*dto.AcceptBookingResponse, error)
	RejectBookingRequest(ctx context.Context, therapistID, bookingID uuid.UUID, req *dto.RejectBookingRequest) (*dto.BookingResponse, error)
	CancelBookingRequest(ctx context.Context, clientID, bookingID uuid.UUID) (*dto.BookingResponse, error)
	ListBookingRequests(ctx context.Context, userID uuid.UUID, roleID int, status entity.BookingStatus) (*dto.BookingListResponse, error)
	GetBookingRequest(ctx context.Context, userID, bookingID uuid.UUID) (*dto.BookingResponse, error)
}

type bookingUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	bookingRepo     repository.BookingRequestRepository
	intentRepo      repository.PaymentIntentRepository
	appointmentRepo repository.AppointmentRepository
	therapistRepo   repository.TherapistProfileRepository
	notifier        service.Notifier
	publisher       messaging.EventPublisher
	enqueuer        queue.TaskEnqueuer
	auditService    service.AuditService
	currency        string
	reminderLead    time.Duration
	now             func() time.Time
}

func NewBookingUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	bookingRepo repository.BookingRequestRepository,
	intentRepo repository.PaymentIntentRepository,
	appointmentRepo repository.AppointmentRepository,
	therapistRepo repository.TherapistProfileRepository,
	notifier service.Notifier,
	publisher messaging.EventPublisher,
	enqueuer queue.TaskEnqueuer,
	auditService service.AuditService,
	currency string,
	reminderLead time.Duration,
) BookingUsecase {
	return &bookingUsecase{
		transactor:      transactor,
		log:             log,
		bookingRepo:     bookingRepo,
		intentRepo:      intentRepo,
		appointmentRepo: appointmentRepo,
		therapistRepo:   therapistRepo,
		notifier:        notifier,
		publisher:       publisher,
		enqueuer:        enqueuer,
		auditService:    auditService,
		currency:        currency,
		reminderLead:    reminderLead,
		now:             time.Now,
	}
}

// CreateBookingRequest writes the request, its payment intent (paid sessions
// only) and the therapist notification in one transaction.
func (u *bookingUsecase) CreateBookingRequest(ctx context.Context, clientID uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if _, err := time.Parse("2006-01-02", req.RequestedDate); err != nil {
		return nil, ErrInvalidDateFormat
	}
	if _, err := time.Parse("15:04", req.RequestedTime); err != nil {
		return nil, ErrInvalidTimeFormat
	}

	therapist, err := u.therapistRepo.FindByUserID(u.transactor.DB(ctx), req.TherapistID)
	if err != nil {
		u.log.Warnf("Failed to find therapist: %+v", err)
		return nil, err
	}
	if therapist == nil || !therapist.Profile.IsActive {
		return nil, ErrTherapistNotFound
	}

	booking := &entity.BookingRequest{
		ID:              uuid.New(),
		ClientID:        clientID,
		TherapistID:     therapist.UserID,
		RequestedDate:   req.RequestedDate,
		RequestedTime:   req.RequestedTime,
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
		Message:         req.Message,
		PaymentRequired: therapist.RequiresPayment(),
		PaymentAmount:   decimal.Zero,
		Status:          entity.BookingStatusPending,
	}

	var intent *entity.PaymentIntent
	if booking.PaymentRequired {
		booking.PaymentAmount = money.SessionFee(therapist.HourlyRate, req.DurationMinutes)
		// a paid session nobody can pay for would sit in awaiting_payment forever
		if !booking.PaymentAmount.IsPositive() {
			return nil, ErrTherapistNotBookable
		}
		intent = &entity.PaymentIntent{
			ID:               uuid.New(),
			BookingRequestID: booking.ID,
			UserID:           clientID,
			TherapistID:      therapist.UserID,
			Amount:           booking.PaymentAmount,
			Currency:         u.currency,
			Status:           entity.PaymentIntentPending,
		}
	}

	notification := &entity.Notification{
		UserID:    therapist.UserID,
		Title:     "New booking request",
		Message:   fmt.Sprintf("You have a new %s session request for %s at %s.", req.SessionType, req.RequestedDate, req.RequestedTime),
		Type:      entity.NotificationTypeBooking,
		ActionURL: "/therapist/bookings/" + booking.ID.String(),
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.bookingRepo.Create(tx, booking); err != nil {
			if isForeignKeyError(err, "client") || isForeignKeyError(err, "therapist") {
				return ErrTherapistNotFound
			}
			u.log.Warnf("Failed to create booking request: %+v", err)
			return err
		}

		if intent != nil {
			if err := u.intentRepo.Create(tx, intent); err != nil {
				u.log.Warnf("Failed to create payment intent: %+v", err)
				return err
			}
		}

		if err := u.notifier.Stage(tx, notification); err != nil {
			u.log.Warnf("Failed to create booking notification: %+v", err)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Announce(ctx, notification)
	publishEvent(ctx, u.log, u.publisher, messaging.TopicBooking, booking.ID.String(), messaging.EventBookingRequested, map[string]interface{}{
		"booking_id":       booking.ID,
		"client_id":        booking.ClientID,
		"therapist_id":     booking.TherapistID,
		"payment_required": booking.PaymentRequired,
		"payment_amount":   booking.PaymentAmount,
	})
	u.auditService.LogCreate(ctx, nil, &clientID, entity.AuditActionBookingCreate, "booking_request", booking.ID.String(), map[string]interface{}{
		"therapist_id":   booking.TherapistID,
		"payment_amount": booking.PaymentAmount.String(),
	})

	booking.Therapist = therapist.Profile
	response := converter.BookingToResponse(booking)
	response.PaymentIntent = converter.PaymentIntentToResponse(intent)
	return response, nil
}

func (u *bookingUsecase) AcceptBookingRequest(ctx context.Context, therapistID, bookingID uuid.UUID) (*dto.AcceptBookingResponse, error) {
	booking, err := u.findOwnedByTherapist(ctx, therapistID, bookingID)
	if err != nil {
		return nil, err
	}

	start, err := booking.StartTime()
	if err != nil {
		u.log.Warnf("Failed to parse booking start time: %+v", err)
		return nil, ErrInvalidDateFormat
	}

	status := entity.AppointmentScheduled
	if booking.PaymentRequired {
		status = entity.AppointmentAwaitingPayment
	}

	appointment := &entity.Appointment{
		ID:               uuid.New(),
		ClientID:         booking.ClientID,
		TherapistID:      booking.TherapistID,
		BookingRequestID: &booking.ID,
		StartTime:        start,
		EndTime:          start.Add(time.Duration(booking.DurationMinutes) * time.Minute),
		Status:           status,
		SessionType:      booking.SessionType,
		Amount:           booking.PaymentAmount,
	}

	message := fmt.Sprintf("Your session on %s at %s has been confirmed.", booking.RequestedDate, booking.RequestedTime)
	if booking.PaymentRequired {
		message = fmt.Sprintf("Your session on %s at %s was accepted. Complete payment of %s %s to confirm it.",
			booking.RequestedDate, booking.RequestedTime, booking.PaymentAmount.StringFixed(2), u.currency)
	}
	notification := &entity.Notification{
		UserID:    booking.ClientID,
		Title:     "Booking accepted",
		Message:   message,
		Type:      entity.NotificationTypeBooking,
		ActionURL: "/appointments/" + appointment.ID.String(),
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		// Appointment first: the booking row references it
		if err := u.appointmentRepo.Create(tx, appointment); err != nil {
			if isDuplicateKeyError(err, "booking_request") {
				return ErrBookingNotPending
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		affected, err := u.bookingRepo.TransitionStatus(tx, booking.ID, entity.BookingStatusPending, entity.BookingStatusAccepted, map[string]interface{}{
			"appointment_id": appointment.ID,
		})
		if err != nil {
			u.log.Warnf("Failed to accept booking request: %+v", err)
			return err
		}
		if affected == 0 {
			return ErrBookingNotPending
		}

		return u.notifier.Stage(tx, notification)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = entity.BookingStatusAccepted
	booking.AppointmentID = &appointment.ID
	appointment.Client = booking.Client
	appointment.Therapist = booking.Therapist

	u.notifier.Announce(ctx, notification)
	publishEvent(ctx, u.log, u.publisher, messaging.TopicBooking, booking.ID.String(), messaging.EventBookingAccepted, map[string]interface{}{
		"booking_id":     booking.ID,
		"appointment_id": appointment.ID,
		"status":         appointment.Status,
	})
	u.auditService.LogUpdate(ctx, nil, &therapistID, entity.AuditActionBookingAccept, "booking_request", booking.ID.String(),
		map[string]interface{}{"status": entity.BookingStatusPending},
		map[string]interface{}{"status": entity.BookingStatusAccepted, "appointment_id": appointment.ID})
	scheduleReminder(ctx, u.log, u.enqueuer, appointment, u.reminderLead, u.now())

	return &dto.AcceptBookingResponse{
		Booking:     *converter.BookingToResponse(booking),
		Appointment: *converter.AppointmentToResponse(appointment),
	}, nil
}

func (u *bookingUsecase) RejectBookingRequest(ctx context.Context, therapistID, bookingID uuid.UUID, req *dto.RejectBookingRequest) (*dto.BookingResponse, error) {
	booking, err := u.findOwnedByTherapist(ctx, therapistID, bookingID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your session request for %s at %s was declined.", booking.RequestedDate, booking.RequestedTime)
	if req.Reason != "" {
		message += " Reason: " + req.Reason
	}
	notification := &entity.Notification{
		UserID:    booking.ClientID,
		Title:     "Booking declined",
		Message:   message,
		Type:      entity.NotificationTypeBooking,
		ActionURL: "/client/bookings/" + booking.ID.String(),
	}

	err = u.closeBooking(ctx, booking, entity.BookingStatusRejected, map[string]interface{}{"rejection_reason": req.Reason}, notification)
	if err != nil {
		return nil, err
	}
	booking.RejectionReason = req.Reason

	publishEvent(ctx, u.log, u.publisher, messaging.TopicBooking, booking.ID.String(), messaging.EventBookingRejected, map[string]interface{}{
		"booking_id": booking.ID,
		"reason":     req.Reason,
	})
	u.auditService.LogUpdate(ctx, nil, &therapistID, entity.AuditActionBookingReject, "booking_request", booking.ID.String(),
		map[string]interface{}{"status": entity.BookingStatusPending},
		map[string]interface{}{"status": entity.BookingStatusRejected, "reason": req.Reason})

	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) CancelBookingRequest(ctx context.Context, clientID, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, ErrBookingNotOwned
	}
	if !booking.IsPending() {
		return nil, ErrBookingNotPending
	}

	notification := &entity.Notification{
		UserID:    booking.TherapistID,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("The session request for %s at %s was cancelled by the client.", booking.RequestedDate, booking.RequestedTime),
		Type:      entity.NotificationTypeBooking,
		ActionURL: "/therapist/bookings/" + booking.ID.String(),
	}

	if err := u.closeBooking(ctx, booking, entity.BookingStatusCancelled, nil, notification); err != nil {
		return nil, err
	}

	publishEvent(ctx, u.log, u.publisher, messaging.TopicBooking, booking.ID.String(), messaging.EventBookingCancelled, map[string]interface{}{
		"booking_id": booking.ID,
	})
	u.auditService.LogUpdate(ctx, nil, &clientID, entity.AuditActionBookingCancel, "booking_request", booking.ID.String(),
		map[string]interface{}{"status": entity.BookingStatusPending},
		map[string]interface{}{"status": entity.BookingStatusCancelled})

	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) ListBookingRequests(ctx context.Context, userID uuid.UUID, roleID int, status entity.BookingStatus) (*dto.BookingListResponse, error) {
	db := u.transactor.DB(ctx)
	filter := entity.BookingFilter{Status: status}

	var (
		bookings []entity.BookingRequest
		err      error
	)
	switch {
	case roleID == entity.RoleIDClient:
		bookings, err = u.bookingRepo.FindByClientID(db, userID, filter)
	case entity.IsProvider(roleID):
		bookings, err = u.bookingRepo.FindByTherapistID(db, userID, filter)
	default:
		return nil, ErrActionNotAllowed
	}
	if err != nil {
		u.log.Warnf("Failed to list booking requests: %+v", err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) GetBookingRequest(ctx context.Context, userID, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != userID && booking.TherapistID != userID {
		return nil, ErrBookingNotOwned
	}

	response := converter.BookingToResponse(booking)
	if booking.PaymentRequired {
		intent, err := u.intentRepo.FindByBookingRequestID(u.transactor.DB(ctx), booking.ID)
		if err != nil {
			u.log.Warnf("Failed to find payment intent: %+v", err)
			return nil, err
		}
		response.PaymentIntent = converter.PaymentIntentToResponse(intent)
	}
	return response, nil
}

// closeBooking moves a pending request to a final state, voids its payment
// intent and stages the counterpart's notification.
func (u *bookingUsecase) closeBooking(ctx context.Context, booking *entity.BookingRequest, to entity.BookingStatus, fields map[string]interface{}, notification *entity.Notification) error {
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.bookingRepo.TransitionStatus(tx, booking.ID, entity.BookingStatusPending, to, fields)
		if err != nil {
			u.log.Warnf("Failed to update booking request status: %+v", err)
			return err
		}
		if affected == 0 {
			return ErrBookingNotPending
		}

		if booking.PaymentRequired {
			if _, err := u.intentRepo.TransitionStatus(tx, booking.ID, entity.PaymentIntentPending, entity.PaymentIntentCancelled); err != nil {
				u.log.Warnf("Failed to cancel payment intent: %+v", err)
				return err
			}
		}

		return u.notifier.Stage(tx, notification)
	})
	if err != nil {
		return err
	}

	booking.Status = to
	u.notifier.Announce(ctx, notification)
	return nil
}

func (u *bookingUsecase) findBooking(ctx context.Context, bookingID uuid.UUID) (*entity.BookingRequest, error) {
	booking, err := u.bookingRepo.FindByID(u.transactor.DB(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking request: %+v", err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (u *bookingUsecase) findOwnedByTherapist(ctx context.Context, therapistID, bookingID uuid.UUID) (*entity.BookingRequest, error) {
	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TherapistID != therapistID {
		return nil, ErrBookingNotOwned
	}
	if !booking.IsPending() {
		return nil, ErrBookingNotPending
	}
	return booking, nil
}
