package usecase

import (
	"context"
	"testing"
	"time"

	"theralink/config"
	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"
	"theralink/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthUsecase(env *testEnv, tokens *stubTokenStore) (AuthUsecase, *jwt.JWTService) {
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	uc := NewAuthUsecase(env.transactor, env.log, &memProfileRepo{s: env.store}, memRoleRepo{}, &memTherapistRepo{s: env.store}, jwtService, tokens, env.audit)
	return uc, jwtService
}

func TestRegisterFriendGetsCommunityProfile(t *testing.T) {
	env := newTestEnv()
	uc, _ := newAuthUsecase(env, newStubTokenStore())

	res, err := uc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "Kemi@Example.com",
		Password: "password123",
		FullName: "Kemi Friend",
		Role:     entity.RoleFriend,
	})
	require.NoError(t, err)

	assert.Equal(t, "kemi@example.com", res.Email)
	assert.Equal(t, entity.RoleFriend, res.Role)
	therapist, ok := env.store.therapists[res.ID]
	require.True(t, ok)
	assert.True(t, therapist.IsCommunity)
	assert.NotEqual(t, "password123", env.store.profiles[res.ID].Password)
}

func TestRegisterClientHasNoTherapistProfile(t *testing.T) {
	env := newTestEnv()
	uc, _ := newAuthUsecase(env, newStubTokenStore())

	res, err := uc.Register(context.Background(), &dto.RegisterRequest{
		Email: "ada@example.com", Password: "password123", FullName: "Ada Client", Role: entity.RoleClient,
	})
	require.NoError(t, err)
	assert.NotContains(t, env.store.therapists, res.ID)
}

func TestLoginRefreshLogout(t *testing.T) {
	env := newTestEnv()
	tokens := newStubTokenStore()
	uc, jwtService := newAuthUsecase(env, tokens)
	ctx := context.Background()

	_, err := uc.Register(ctx, &dto.RegisterRequest{Email: "ada@example.com", Password: "password123", FullName: "Ada Client", Role: entity.RoleClient})
	require.NoError(t, err)

	_, err = uc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := uc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.EqualValues(t, 900, login.ExpiresIn)

	refreshed, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	// Refresh tokens rotate
	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: refreshed.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := jwtService.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	refresh, err := jwtService.ValidateToken(refreshed.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, uc.Logout(ctx, access.UserID, access.TokenID, refresh.TokenID))
	exists, err := tokens.Exists(ctx, access.UserID, jwt.AccessToken, access.TokenID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: refreshed.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLoginInactiveAccount(t *testing.T) {
	env := newTestEnv()
	uc, _ := newAuthUsecase(env, newStubTokenStore())
	ctx := context.Background()

	res, err := uc.Register(ctx, &dto.RegisterRequest{Email: "ada@example.com", Password: "password123", FullName: "Ada Client", Role: entity.RoleClient})
	require.NoError(t, err)

	p := env.store.profiles[res.ID]
	p.IsActive = false
	env.store.profiles[res.ID] = p

	_, err = uc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	uc, _ := newAuthUsecase(env, newStubTokenStore())
	req := &dto.RegisterRequest{Email: "ada@example.com", Password: "password123", FullName: "Ada Client", Role: entity.RoleClient}

	_, err := uc.Register(context.Background(), req)
	require.NoError(t, err)

	req.Email = "ADA@example.com"
	_, err = uc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Len(t, env.store.profiles, 1)
}
