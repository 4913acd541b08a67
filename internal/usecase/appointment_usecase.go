package usecase

import (
	"context"
	"fmt"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AppointmentUsecase interface {
	ListAppointments(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, userID, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, userID, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	SendReminder(ctx context.Context, appointmentID uuid.UUID) error
}

type appointmentUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	intentRepo      repository.PaymentIntentRepository
	notifier        service.Notifier
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	intentRepo repository.PaymentIntentRepository,
	notifier service.Notifier,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		transactor:      transactor,
		log:             log,
		appointmentRepo: appointmentRepo,
		intentRepo:      intentRepo,
		notifier:        notifier,
		auditService:    auditService,
	}
}

func (u *appointmentUsecase) ListAppointments(ctx context.Context, userID uuid.UUID, status entity.AppointmentStatus) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByParticipant(u.transactor.DB(ctx), userID, entity.AppointmentFilter{Status: status})
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, userID, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.findForParticipant(ctx, userID, appointmentID)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus lets the provider complete a scheduled session and either
// party cancel one that has not finished.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, userID, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findForParticipant(ctx, userID, appointmentID)
	if err != nil {
		return nil, err
	}

	next := entity.AppointmentStatus(req.Status)
	// only a confirmed payment schedules a session
	if next == entity.AppointmentScheduled {
		return nil, ErrInvalidStatusTransition
	}
	if next == entity.AppointmentCompleted && appointment.TherapistID != userID {
		return nil, ErrActionNotAllowed
	}
	if !appointment.Status.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	previous := appointment.Status
	counterpart := appointment.ClientID
	if userID == appointment.ClientID {
		counterpart = appointment.TherapistID
	}
	notification := &entity.Notification{
		UserID:    counterpart,
		Title:     "Appointment " + string(next),
		Message:   fmt.Sprintf("The session on %s is now %s.", appointment.StartTime.Format("2006-01-02 15:04"), next),
		Type:      entity.NotificationTypeAppointment,
		ActionURL: "/appointments/" + appointment.ID.String(),
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.TransitionStatus(tx, appointment.ID, previous, next, nil)
		if err != nil {
			u.log.Warnf("Failed to update appointment status: %+v", err)
			return err
		}
		if affected == 0 {
			return ErrInvalidStatusTransition
		}

		// An unpaid session that is called off no longer owes anything
		if next == entity.AppointmentCancelled && previous == entity.AppointmentAwaitingPayment && appointment.BookingRequestID != nil {
			if _, err := u.intentRepo.TransitionStatus(tx, *appointment.BookingRequestID, entity.PaymentIntentPending, entity.PaymentIntentCancelled); err != nil {
				u.log.Warnf("Failed to cancel payment intent: %+v", err)
				return err
			}
		}

		return u.notifier.Stage(tx, notification)
	})
	if err != nil {
		return nil, err
	}
	appointment.Status = next

	u.notifier.Announce(ctx, notification)
	u.auditService.LogUpdate(ctx, nil, &userID, entity.AuditActionAppointmentState, "appointment", appointment.ID.String(),
		map[string]interface{}{"status": previous},
		map[string]interface{}{"status": next})

	return converter.AppointmentToResponse(appointment), nil
}

// SendReminder is run by the worker. Appointments that are gone or no longer
// scheduled are skipped without error so the task is not retried.
func (u *appointmentUsecase) SendReminder(ctx context.Context, appointmentID uuid.UUID) error {
	appointment, err := u.appointmentRepo.FindByID(u.transactor.DB(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return err
	}
	if appointment == nil || appointment.Status != entity.AppointmentScheduled {
		u.log.Infof("Skipping reminder for appointment %s", appointmentID)
		return nil
	}

	when := appointment.StartTime.Format("2006-01-02 15:04")
	actionURL := "/appointments/" + appointment.ID.String()
	notifications := []*entity.Notification{
		{
			UserID:    appointment.ClientID,
			Title:     "Upcoming session",
			Message:   fmt.Sprintf("Your session with %s starts at %s.", appointment.Therapist.FullName, when),
			Type:      entity.NotificationTypeReminder,
			ActionURL: actionURL,
		},
		{
			UserID:    appointment.TherapistID,
			Title:     "Upcoming session",
			Message:   fmt.Sprintf("Your session with %s starts at %s.", appointment.Client.FullName, when),
			Type:      entity.NotificationTypeReminder,
			ActionURL: actionURL,
		},
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return u.notifier.Stage(tx, notifications...)
	})
	if err != nil {
		u.log.Warnf("Failed to create reminder notifications: %+v", err)
		return err
	}

	u.notifier.Announce(ctx, notifications...)
	return nil
}

func (u *appointmentUsecase) findForParticipant(ctx context.Context, userID, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(u.transactor.DB(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return appointment, nil
}
