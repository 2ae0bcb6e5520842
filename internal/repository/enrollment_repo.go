package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// EnrollmentRepository provides access to the user/course join rows.
type EnrollmentRepository interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
	ListActiveByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error)
	ListCompletedByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("role = ?", models.EnrollmentRoleStudent).
		Where("status = ?", models.EnrollmentStatusActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListActiveByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Where("role = ?", models.EnrollmentRoleStudent).
		Where("status = ?", models.EnrollmentStatusActive).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) ListCompletedByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status = ?", models.EnrollmentStatusCompleted).
		Order("completed_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	return enrollments, nil
}
