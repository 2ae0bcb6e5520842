package dto

import (
	"time"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// InvitationDetails serializes an invitation together with the course it
// grants access to, as shown on the acceptance screen.
type InvitationDetails struct {
	ID                string    `json:"id"`
	CourseID          uint      `json:"course_id"`
	CourseTitle       string    `json:"course_title"`
	CourseDescription string    `json:"course_description"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	InvitedBy         string    `json:"invited_by"`
	Message           string    `json:"message,omitempty"`
	MaxUses           int       `json:"max_uses"`
	CurrentUses       int       `json:"current_uses"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewInvitationDetails combines an invitation row with its course row.
func NewInvitationDetails(invitation models.Invitation, course models.Course) InvitationDetails {
	return InvitationDetails{
		ID:                invitation.ID,
		CourseID:          invitation.CourseID,
		CourseTitle:       course.Title,
		CourseDescription: course.Description,
		Email:             invitation.Email,
		Role:              invitation.Role,
		Status:            invitation.Status,
		InvitedBy:         invitation.InvitedBy,
		Message:           invitation.Message,
		MaxUses:           invitation.MaxUses,
		CurrentUses:       invitation.CurrentUses,
		ExpiresAt:         invitation.ExpiresAt,
		CreatedAt:         invitation.CreatedAt,
	}
}

// AcceptInvitationRequest identifies the accepting user.
type AcceptInvitationRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Email  string `json:"email" validate:"required,email"`
}

// AcceptInvitationResponse confirms the enrollment created by accepting
// an invitation.
type AcceptInvitationResponse struct {
	EnrollmentID uint      `json:"enrollment_id"`
	CourseID     uint      `json:"course_id"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}
