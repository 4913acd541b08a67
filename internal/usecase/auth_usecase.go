package usecase

import (
	"context"
	"strings"

	"theralink/internal/converter"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/internal/domain/repository"
	"theralink/internal/service"
	"theralink/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	transactor    repository.Transactor
	log           *logrus.Logger
	profileRepo   repository.ProfileRepository
	roleRepo      repository.RoleRepository
	therapistRepo repository.TherapistProfileRepository
	jwtService    *jwt.JWTService
	tokenStore    service.TokenStore
	auditService  service.AuditService
}

func NewAuthUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	roleRepo repository.RoleRepository,
	therapistRepo repository.TherapistProfileRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		transactor:    transactor,
		log:           log,
		profileRepo:   profileRepo,
		roleRepo:      roleRepo,
		therapistRepo: therapistRepo,
		jwtService:    jwtService,
		tokenStore:    tokenStore,
		auditService:  auditService,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	profile := &entity.Profile{
		ID:       uuid.New(),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
		FullName: req.FullName,
		Phone:    req.Phone,
		IsActive: true,
	}

	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		role, err := u.roleRepo.FindByName(tx, req.Role)
		if err != nil {
			u.log.Warnf("Failed to find role: %+v", err)
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}
		profile.RoleID = role.ID
		profile.Role = *role

		if err := u.profileRepo.Create(tx, profile); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			if isForeignKeyError(err, "role") {
				return ErrRoleNotFound
			}
			u.log.Warnf("Failed to create profile: %+v", err)
			return err
		}

		// Providers get an empty capability record to fill in during onboarding
		if entity.IsProvider(role.ID) {
			therapist := &entity.TherapistProfile{
				UserID:       profile.ID,
				HourlyRate:   decimal.Zero,
				Availability: []entity.AvailabilityDay{},
				IsCommunity:  role.ID == entity.RoleIDFriend,
			}
			if err := u.therapistRepo.Create(tx, therapist); err != nil {
				u.log.Warnf("Failed to create therapist profile: %+v", err)
				return err
			}
			profile.TherapistProfile = therapist
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, nil, &profile.ID, entity.AuditActionUserRegister, "profile", profile.ID.String(), map[string]interface{}{
		"email": profile.Email,
		"role":  req.Role,
	})

	return converter.ProfileToResponse(profile), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Read-only, no transaction needed
	profile, err := u.profileRepo.FindByEmail(u.transactor.DB(ctx), strings.TrimSpace(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return nil, ErrAccountInactive
	}

	tokens, err := u.issueTokens(ctx, profile.ID, profile.Email, profile.RoleID)
	if err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, nil, &profile.ID, entity.AuditActionUserLogin, "session", profile.ID.String(), nil)

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	if err := u.tokenStore.Revoke(ctx, userID, jwt.AccessToken, accessTokenID); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshTokenID != "" {
		if err := u.tokenStore.Revoke(ctx, userID, jwt.RefreshToken, refreshTokenID); err != nil {
			u.log.Warnf("Failed to delete refresh token: %+v", err)
			return err
		}
	}

	u.auditService.LogCreate(ctx, nil, &userID, entity.AuditActionUserLogout, "session", userID.String(), nil)

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Check if refresh token is still allow-listed
	exists, err := u.tokenStore.Exists(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Rotate: the old refresh token can only be used once
	if err := u.tokenStore.Revoke(ctx, claims.UserID, jwt.RefreshToken, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.Email, claims.RoleID)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	profile, err := u.profileRepo.FindByID(u.transactor.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}

	return converter.ProfileToResponse(profile), nil
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string, roleID int) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, roleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, userID, jwt.AccessToken, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, userID, jwt.RefreshToken, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}
