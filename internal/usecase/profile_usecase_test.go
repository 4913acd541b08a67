package usecase

import (
	"context"
	"strings"
	"testing"

	"theralink/internal/delivery/dto"
	"theralink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAvatarStoresURL(t *testing.T) {
	env := newTestEnv()
	client := env.store.addProfile(entity.RoleIDClient, "Ada Client")
	storage := &stubStorage{url: "https://res.cloudinary.com/demo/avatars/ada.png"}
	uc := NewProfileUsecase(env.transactor, env.log, &memProfileRepo{s: env.store}, storage, env.audit)

	res, err := uc.UploadAvatar(context.Background(), client.ID, strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, storage.url, res.ProfileImageURL)
	assert.Equal(t, storage.url, env.store.profiles[client.ID].ProfileImageURL)

	_, err = uc.UploadAvatar(context.Background(), uuid.New(), strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUploadAvatarStorageFailure(t *testing.T) {
	env := newTestEnv()
	client := env.store.addProfile(entity.RoleIDClient, "Ada Client")
	uc := NewProfileUsecase(env.transactor, env.log, &memProfileRepo{s: env.store}, &stubStorage{err: errStub}, env.audit)

	_, err := uc.UploadAvatar(context.Background(), client.ID, strings.NewReader("png"))
	assert.ErrorIs(t, err, errStub)
	assert.Empty(t, env.store.profiles[client.ID].ProfileImageURL)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv()
	client := env.store.addProfile(entity.RoleIDClient, "Ada Client")
	uc := NewProfileUsecase(env.transactor, env.log, &memProfileRepo{s: env.store}, &stubStorage{}, env.audit)

	res, err := uc.UpdateProfile(context.Background(), client.ID, &dto.UpdateProfileRequest{FullName: "Ada Lovelace", Phone: "08012345678"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", res.FullName)
	assert.Equal(t, "08012345678", env.store.profiles[client.ID].Phone)

	_, err = uc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
