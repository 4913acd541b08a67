package usecase

import (
	"context"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TherapistUsecase interface {
	ListTherapists(ctx context.Context, filter *entity.TherapistFilter) (*dto.TherapistListResponse, error)
	GetTherapist(ctx context.Context, userID uuid.UUID) (*dto.TherapistProfileResponse, error)
	GetOwnProfile(ctx context.Context, userID uuid.UUID) (*dto.TherapistProfileResponse, error)
	UpsertOwnProfile(ctx context.Context, userID uuid.UUID, roleID int, req *dto.UpsertTherapistProfileRequest) (*dto.TherapistProfileResponse, error)
	UpdateAvailability(ctx context.Context, userID uuid.UUID, req *dto.UpdateAvailabilityRequest) (*dto.TherapistProfileResponse, error)
}

type therapistUsecase struct {
	transactor    repository.Transactor
	log           *logrus.Logger
	therapistRepo repository.TherapistProfileRepository
	auditService  service.AuditService
}

func NewTherapistUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	therapistRepo repository.TherapistProfileRepository,
	auditService service.AuditService,
) TherapistUsecase {
	return &therapistUsecase{
		transactor:    transactor,
		log:           log,
		therapistRepo: therapistRepo,
		auditService:  auditService,
	}
}

func (u *therapistUsecase) ListTherapists(ctx context.Context, filter *entity.TherapistFilter) (*dto.TherapistListResponse, error) {
	therapists, err := u.therapistRepo.FindAllActive(u.transactor.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list therapists: %+v", err)
		return nil, err
	}

	return &dto.TherapistListResponse{
		Therapists: converter.TherapistsToResponses(therapists),
		Total:      len(therapists),
	}, nil
}

func (u *therapistUsecase) GetTherapist(ctx context.Context, userID uuid.UUID) (*dto.TherapistProfileResponse, error) {
	therapist, err := u.findProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !therapist.Profile.IsActive {
		return nil, ErrTherapistNotFound
	}
	return converter.TherapistToResponse(therapist), nil
}

func (u *therapistUsecase) GetOwnProfile(ctx context.Context, userID uuid.UUID) (*dto.TherapistProfileResponse, error) {
	therapist, err := u.findProvider(ctx, userID)
	if err != nil {
		return nil, err
	}
	return converter.TherapistToResponse(therapist), nil
}

func (u *therapistUsecase) UpsertOwnProfile(ctx context.Context, userID uuid.UUID, roleID int, req *dto.UpsertTherapistProfileRequest) (*dto.TherapistProfileResponse, error) {
	if !entity.IsProvider(roleID) {
		return nil, ErrNotAProvider
	}
	if req.HourlyRate.IsNegative() {
		return nil, ErrInvalidAmount
	}

	db := u.transactor.DB(ctx)

	therapist, err := u.therapistRepo.FindByUserID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find therapist profile: %+v", err)
		return nil, err
	}

	isNew := therapist == nil
	if isNew {
		therapist = &entity.TherapistProfile{UserID: userID, Availability: []entity.AvailabilityDay{}}
	}

	// Friends only ever offer community sessions
	isCommunity := req.IsCommunity || roleID == entity.RoleIDFriend
	rate := req.HourlyRate.Round(2)
	if !isCommunity && !rate.IsPositive() {
		return nil, ErrInvalidAmount
	}

	therapist.HourlyRate = rate
	therapist.Specialization = req.Specialization
	therapist.YearsOfExperience = req.YearsOfExperience
	therapist.Bio = req.Bio
	therapist.IsCommunity = isCommunity

	if isNew {
		err = u.therapistRepo.Create(db, therapist)
	} else {
		err = u.therapistRepo.Update(db, therapist)
	}
	if err != nil {
		u.log.Warnf("Failed to save therapist profile: %+v", err)
		return nil, err
	}

	u.auditService.LogUpdate(ctx, nil, &userID, entity.AuditActionTherapistUpdate, "therapist_profile", userID.String(), nil, map[string]interface{}{
		"hourly_rate":  therapist.HourlyRate.String(),
		"is_community": therapist.IsCommunity,
	})

	return converter.TherapistToResponse(therapist), nil
}

func (u *therapistUsecase) UpdateAvailability(ctx context.Context, userID uuid.UUID, req *dto.UpdateAvailabilityRequest) (*dto.TherapistProfileResponse, error) {
	db := u.transactor.DB(ctx)
	availability := converter.AvailabilityFromRequest(req.Availability)

	affected, err := u.therapistRepo.UpdateAvailability(db, userID, availability)
	if err != nil {
		u.log.Warnf("Failed to update availability: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrTherapistNotFound
	}

	return u.GetOwnProfile(ctx, userID)
}

func (u *therapistUsecase) findProvider(ctx context.Context, userID uuid.UUID) (*entity.TherapistProfile, error) {
	therapist, err := u.therapistRepo.FindByUserID(u.transactor.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find therapist profile: %+v", err)
		return nil, err
	}
	if therapist == nil {
		return nil, ErrTherapistNotFound
	}
	return therapist, nil
}
