package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// CourseRepository provides read access to course rows.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.Course, error) {
	if len(ids) == 0 {
		return map[uint]models.Course{}, nil
	}

	var courses []models.Course
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}

	return byID, nil
}
