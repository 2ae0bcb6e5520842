package models

import "time"

// Enrollment roles.
const (
	EnrollmentRoleStudent = "student"
	EnrollmentRoleTeacher = "teacher"
)

// Enrollment lifecycle states.
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusWithdrawn = "withdrawn"
)

// Enrollment links a user to a course with a role and a status. It is the
// join key between the users and courses tables.
type Enrollment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"size:36;not null;index" json:"user_id"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Role        string     `gorm:"size:32;not null;default:student" json:"role"`
	Status      string     `gorm:"size:32;not null;default:active" json:"status"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Grade       string     `gorm:"size:8" json:"grade,omitempty"`
	Feedback    string     `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActiveStudent reports whether the enrollment is an active student seat.
func (e Enrollment) IsActiveStudent() bool {
	return e.Role == EnrollmentRoleStudent && e.Status == EnrollmentStatusActive
}
