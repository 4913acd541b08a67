package usecase

import (
	"context"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

type AdminUsecase interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
	ListUsers(ctx context.Context, filter entity.UserFilter) (*dto.UserListResponse, error)
}

type adminUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	profileRepo     repository.ProfileRepository
	bookingRepo     repository.BookingRequestRepository
	appointmentRepo repository.AppointmentRepository
	transactionRepo repository.TransactionRepository
}

func NewAdminUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	bookingRepo repository.BookingRequestRepository,
	appointmentRepo repository.AppointmentRepository,
	transactionRepo repository.TransactionRepository,
) AdminUsecase {
	return &adminUsecase{
		transactor:      transactor,
		log:             log,
		profileRepo:     profileRepo,
		bookingRepo:     bookingRepo,
		appointmentRepo: appointmentRepo,
		transactionRepo: transactionRepo,
	}
}

// GetDashboard runs the independent aggregates in parallel. Each goroutine
// writes to its own field.
func (u *adminUsecase) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		res      dto.DashboardResponse
		payments decimal.Decimal
		deposits decimal.Decimal
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(4)
	count := func(dst *int64, fn func(db *gorm.DB) (int64, error)) {
		p.Go(func(ctx context.Context) error {
			n, err := fn(u.transactor.DB(ctx))
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&res.TotalClients, func(db *gorm.DB) (int64, error) { return u.profileRepo.CountByRole(db, entity.RoleIDClient) })
	count(&res.TotalTherapists, func(db *gorm.DB) (int64, error) { return u.profileRepo.CountByRole(db, entity.RoleIDTherapist) })
	count(&res.TotalFriends, func(db *gorm.DB) (int64, error) { return u.profileRepo.CountByRole(db, entity.RoleIDFriend) })
	count(&res.PendingBookings, func(db *gorm.DB) (int64, error) {
		return u.bookingRepo.CountByStatus(db, entity.BookingStatusPending)
	})
	count(&res.ScheduledAppointments, func(db *gorm.DB) (int64, error) {
		return u.appointmentRepo.CountByStatus(db, entity.AppointmentScheduled)
	})
	count(&res.CompletedAppointments, func(db *gorm.DB) (int64, error) {
		return u.appointmentRepo.CountByStatus(db, entity.AppointmentCompleted)
	})
	p.Go(func(ctx context.Context) error {
		total, err := u.transactionRepo.SumCompleted(u.transactor.DB(ctx), entity.TransactionPayment)
		payments = total
		return err
	})
	p.Go(func(ctx context.Context) error {
		total, err := u.transactionRepo.SumCompleted(u.transactor.DB(ctx), entity.TransactionDeposit)
		deposits = total
		return err
	})

	if err := p.Wait(); err != nil {
		u.log.Warnf("Failed to build dashboard: %+v", err)
		return nil, err
	}

	res.TotalPayments = payments
	res.TotalDeposits = deposits
	return &res, nil
}

func (u *adminUsecase) ListUsers(ctx context.Context, filter entity.UserFilter) (*dto.UserListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultUserPageSize
	}
	if filter.Limit > maxUserPageSize {
		filter.Limit = maxUserPageSize
	}

	profiles, total, err := u.profileRepo.FindAll(u.transactor.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}

	return &dto.UserListResponse{
		Users: converter.ProfilesToResponses(profiles),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
