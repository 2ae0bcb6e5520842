package models

import "time"

// Invitation lifecycle states.
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusExpired   = "expired"
	InvitationStatusCancelled = "cancelled"
)

// Invitation is a tokenized invite that enrolls a user into a course on
// acceptance.
type Invitation struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Email       string     `gorm:"size:255;not null" json:"email"`
	Role        string     `gorm:"size:32;not null;default:student" json:"role"`
	Status      string     `gorm:"size:32;not null;default:pending" json:"status"`
	Token       string     `gorm:"size:64;uniqueIndex;not null" json:"invitation_token"`
	InvitedBy   string     `gorm:"size:255" json:"invited_by"`
	Message     string     `gorm:"type:text" json:"message,omitempty"`
	MaxUses     int        `gorm:"not null;default:1" json:"max_uses"`
	CurrentUses int        `gorm:"not null;default:0" json:"current_uses"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsExpired reports whether the invitation deadline has passed.
func (i Invitation) IsExpired(reference time.Time) bool {
	return reference.After(i.ExpiresAt)
}

// IsExhausted reports whether the invitation reached its usage limit.
func (i Invitation) IsExhausted() bool {
	return i.CurrentUses >= i.MaxUses
}
