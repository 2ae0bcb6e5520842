package dto

import (
	"time"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// ProfileResponse serializes a user profile for the profile endpoints.
type ProfileResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	Gender             string    `json:"gender"`
	PhoneNumber        string    `json:"phone_number"`
	ProfilePictureURL  string    `json:"profile_picture_url"`
	Bio                string    `json:"bio"`
	LanguagePreference string    `json:"language_preference"`
	InstituteName      string    `json:"institute_name,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewProfileResponse maps a user row to the profile payload.
func NewProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FullName:           user.FullName,
		Gender:             user.Gender,
		PhoneNumber:        user.PhoneNumber,
		ProfilePictureURL:  user.ProfilePictureURL,
		Bio:                user.Bio,
		LanguagePreference: user.LanguagePreference,
		InstituteName:      user.InstituteName,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}

// ProfileUpdateRequest captures partial profile updates. Nil fields are
// left untouched.
type ProfileUpdateRequest struct {
	FullName           *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Gender             *string `json:"gender" validate:"omitempty,oneof=male female other unspecified"`
	PhoneNumber        *string `json:"phone_number" validate:"omitempty,max=32"`
	Bio                *string `json:"bio" validate:"omitempty,max=2000"`
	LanguagePreference *string `json:"language_preference" validate:"omitempty,min=2,max=16"`
	InstituteName      *string `json:"institute_name" validate:"omitempty,max=255"`
}

// AvatarUploadResponse returns the stored avatar location.
type AvatarUploadResponse struct {
	URL string `json:"url"`
}
