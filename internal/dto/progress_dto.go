package dto

import "time"

// CourseProgress carries the derived progress for one enrolled course.
type CourseProgress struct {
	CourseID       uint   `json:"course_id"`
	Progress       int    `json:"progress"`
	CompletedItems int    `json:"completed_items"`
	TotalItems     int    `json:"total_items"`
	Status         string `json:"status"`
}

// StudentProgressSummary aggregates progress across all of a student's
// active enrollments.
type StudentProgressSummary struct {
	StudentID         string           `json:"student_id"`
	TotalCourses      int              `json:"total_courses"`
	CompletedCourses  int              `json:"completed_courses"`
	InProgressCourses int              `json:"in_progress_courses"`
	AverageProgress   int              `json:"average_progress"`
	Courses           []CourseProgress `json:"courses"`
	CacheHit          bool             `json:"-"`
}

// CompletedCourse serializes a finished enrollment with its course
// details and item-level completion counters.
type CompletedCourse struct {
	ID                    uint       `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	Status                string     `json:"status"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	Grade                 string     `json:"grade,omitempty"`
	Feedback              string     `json:"feedback,omitempty"`
	TotalContentItems     int        `json:"total_content_items"`
	CompletedContentItems int        `json:"completed_content_items"`
	CompletionPercentage  int        `json:"completion_percentage"`
}
