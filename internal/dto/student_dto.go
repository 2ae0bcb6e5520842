package dto

import (
	"time"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// StudentCourse is a course entry attached to a student record, carrying
// the derived progress percentage for that (student, course) pair.
type StudentCourse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

// StudentResponse serializes a student identity row together with the
// courses the student is actively enrolled in.
type StudentResponse struct {
	ID                 string          `json:"id"`
	Email              string          `json:"email"`
	FullName           string          `json:"full_name"`
	Gender             string          `json:"gender"`
	PhoneNumber        string          `json:"phone_number"`
	ProfilePictureURL  string          `json:"profile_picture_url"`
	Bio                string          `json:"bio"`
	LanguagePreference string          `json:"language_preference"`
	CreatedAt          time.Time       `json:"created_at"`
	Courses            []StudentCourse `json:"courses"`
}

// NewStudentResponse builds a student response from the user row and the
// derived course list. A nil course slice is normalized to an empty list
// so the payload never serializes `courses` as null.
func NewStudentResponse(user models.User, courses []StudentCourse) StudentResponse {
	if courses == nil {
		courses = []StudentCourse{}
	}

	return StudentResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FullName:           user.FullName,
		Gender:             user.Gender,
		PhoneNumber:        user.PhoneNumber,
		ProfilePictureURL:  user.ProfilePictureURL,
		Bio:                user.Bio,
		LanguagePreference: user.LanguagePreference,
		CreatedAt:          user.CreatedAt,
		Courses:            courses,
	}
}
