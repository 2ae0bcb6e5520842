package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeUserRepo struct {
	users     []models.User
	listErr   error
	searchErr error
	updateErr error
	updates   map[string]interface{}
}

func (f *fakeUserRepo) ListActive(_ context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Search(_ context.Context, query string) ([]models.User, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return append([]models.User(nil), f.users...), nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, updates map[string]interface{}) (models.User, error) {
	if f.updateErr != nil {
		return models.User{}, f.updateErr
	}
	f.updates = updates
	for i, user := range f.users {
		if user.ID != id {
			continue
		}
		if v, ok := updates["full_name"].(string); ok {
			f.users[i].FullName = v
		}
		if v, ok := updates["bio"].(string); ok {
			f.users[i].Bio = v
		}
		if v, ok := updates["institute_name"].(string); ok {
			f.users[i].InstituteName = v
		}
		if v, ok := updates["profile_picture_url"].(string); ok {
			f.users[i].ProfilePictureURL = v
		}
		return f.users[i], nil
	}
	return models.User{}, gorm.ErrRecordNotFound
}

type fakeEnrollmentRepo struct {
	activeByUser   map[string][]models.Enrollment
	activeByCourse map[uint][]models.Enrollment
	completed      map[string][]models.Enrollment
	errByUser      map[string]error
	courseErr      error
	completedErr   error
}

func (f *fakeEnrollmentRepo) ListActiveByUser(_ context.Context, userID string) ([]models.Enrollment, error) {
	if err := f.errByUser[userID]; err != nil {
		return nil, err
	}
	return f.activeByUser[userID], nil
}

func (f *fakeEnrollmentRepo) ListActiveByCourse(_ context.Context, courseID uint) ([]models.Enrollment, error) {
	if f.courseErr != nil {
		return nil, f.courseErr
	}
	return f.activeByCourse[courseID], nil
}

func (f *fakeEnrollmentRepo) ListCompletedByUser(_ context.Context, userID string) ([]models.Enrollment, error) {
	if f.completedErr != nil {
		return nil, f.completedErr
	}
	return f.completed[userID], nil
}

type fakeCourseRepo struct {
	courses map[uint]models.Course
	errByID map[uint]error
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	if err := f.errByID[id]; err != nil {
		return models.Course{}, err
	}
	course, ok := f.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) GetByIDs(_ context.Context, ids []uint) (map[uint]models.Course, error) {
	byID := make(map[uint]models.Course, len(ids))
	for _, id := range ids {
		if course, ok := f.courses[id]; ok {
			byID[id] = course
		}
	}
	return byID, nil
}

type fakeProgressRepo struct {
	records map[string][]models.ProgressRecord
	errs    map[string]error
}

func progressKey(userID string, courseID uint) string {
	return fmt.Sprintf("%s/%d", userID, courseID)
}

func (f *fakeProgressRepo) ListForCourse(_ context.Context, userID string, courseID uint) ([]models.ProgressRecord, error) {
	key := progressKey(userID, courseID)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.records[key], nil
}
