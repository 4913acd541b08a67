package handler

import (
	"errors"
	"net/http"

	"theralink/internal/delivery/dto"
	"theralink/internal/infrastructure/storage"
	"theralink/internal/usecase"
	"theralink/pkg/response"
	"theralink/pkg/validator"
)

const maxAvatarBytes = 5 << 20

type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *validator.CustomValidator
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase, validator *validator.CustomValidator) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.profileUsecase.GetProfile(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	profile, err := h.profileUsecase.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

// UploadAvatar expects a multipart form with an "avatar" file field.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		response.BadRequest(w, "Avatar must be an image under 5MB")
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		response.BadRequest(w, "avatar file is required")
		return
	}
	defer file.Close()

	avatar, err := h.profileUsecase.UploadAvatar(r.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, storage.ErrStorageNotConfigured):
			response.Error(w, http.StatusServiceUnavailable, "Avatar uploads are disabled", nil)
		default:
			response.BadGateway(w, "Failed to upload avatar")
		}
		return
	}

	response.Success(w, http.StatusOK, "Avatar uploaded successfully", avatar)
}
