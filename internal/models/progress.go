package models

import "time"

// Progress record states.
const (
	ProgressStatusNotStarted = "not_started"
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)

// ProgressRecord tracks completion of a single content item within a
// course. Many records map to one (user, course) pair; course-level
// progress is the rounded mean of their completion percentages.
type ProgressRecord struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               string    `gorm:"size:36;not null;index:idx_progress_user_course" json:"user_id"`
	CourseID             uint      `gorm:"not null;index:idx_progress_user_course" json:"course_id"`
	ContentItemID        uint      `gorm:"not null" json:"content_item_id"`
	CompletionPercentage float64   `gorm:"not null;default:0" json:"completion_percentage"`
	Status               string    `gorm:"size:32;not null;default:not_started" json:"status"`
	TimeSpentSeconds     int64     `gorm:"default:0" json:"time_spent_seconds"`
	LastAccessedAt       time.Time `json:"last_accessed_at"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
