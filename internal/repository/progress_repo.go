package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// ProgressRepository provides access to per-content-item progress rows.
type ProgressRepository interface {
	ListForCourse(ctx context.Context, userID string, courseID uint) ([]models.ProgressRecord, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) ListForCourse(ctx context.Context, userID string, courseID uint) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("course_id = ?", courseID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
