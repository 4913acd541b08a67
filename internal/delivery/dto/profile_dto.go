package dto

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"omitempty,min=7,max=30"`
}

type AvatarResponse struct {
	ProfileImageURL string `json:"profile_image_url"`
}
