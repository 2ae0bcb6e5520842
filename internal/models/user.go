package models

import "time"

// User represents a platform member. Students are users holding at least
// one active enrollment with the student role.
type User struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	Email              string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName           string     `gorm:"size:255;not null" json:"full_name"`
	Gender             string     `gorm:"size:32" json:"gender"`
	PhoneNumber        string     `gorm:"size:32" json:"phone_number"`
	ProfilePictureURL  string     `gorm:"size:512" json:"profile_picture_url"`
	Bio                string     `gorm:"type:text" json:"bio"`
	LanguagePreference string     `gorm:"size:16;default:en" json:"language_preference"`
	InstituteName      string     `gorm:"size:255" json:"institute_name,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `gorm:"index" json:"-"`
}

// IsDeleted reports whether the user has been soft deleted.
func (u User) IsDeleted() bool {
	return u.DeletedAt != nil
}
