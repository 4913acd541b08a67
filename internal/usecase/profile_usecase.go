package usecase

import (
	"context"
	"io"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/infrastructure/storage"
	"theralink/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader) (*dto.AvatarResponse, error)
}

type profileUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	profileRepo  repository.ProfileRepository
	fileStorage  storage.FileStorage
	auditService service.AuditService
}

func NewProfileUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	fileStorage storage.FileStorage,
	auditService service.AuditService,
) ProfileUsecase {
	return &profileUsecase{
		transactor:   transactor,
		log:          log,
		profileRepo:  profileRepo,
		fileStorage:  fileStorage,
		auditService: auditService,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	profile, err := u.profileRepo.FindByID(u.transactor.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	db := u.transactor.DB(ctx)

	profile, err := u.profileRepo.FindByID(db, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}

	old := map[string]interface{}{"full_name": profile.FullName, "phone": profile.Phone}
	profile.FullName = req.FullName
	profile.Phone = req.Phone

	if err := u.profileRepo.Update(db, profile); err != nil {
		u.log.Warnf("Failed to update profile: %+v", err)
		return nil, err
	}

	u.auditService.LogUpdate(ctx, nil, &userID, entity.AuditActionProfileUpdate, "profile", userID.String(), old, map[string]interface{}{
		"full_name": profile.FullName,
		"phone":     profile.Phone,
	})

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader) (*dto.AvatarResponse, error) {
	url, err := u.fileStorage.UploadAvatar(ctx, userID.String(), file)
	if err != nil {
		u.log.Warnf("Failed to upload avatar: %+v", err)
		return nil, err
	}

	affected, err := u.profileRepo.UpdateImageURL(u.transactor.DB(ctx), userID, url)
	if err != nil {
		u.log.Warnf("Failed to save avatar url: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	return &dto.AvatarResponse{ProfileImageURL: url}, nil
}
