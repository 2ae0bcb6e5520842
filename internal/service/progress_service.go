package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/models"
	"github.com/teachme-ai/teachme-api/internal/repository"
)

// ProgressService derives cross-course progress summaries for a student.
type ProgressService interface {
	GetSummary(ctx context.Context, studentID string) (dto.StudentProgressSummary, error)
	ListCompletedCourses(ctx context.Context, studentID string) ([]dto.CompletedCourse, error)
}

type progressService struct {
	users       repository.UserRepository
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	progress    repository.ProgressRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	fanOutLimit int
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewProgressService builds the progress aggregation service.
func NewProgressService(
	users repository.UserRepository,
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	progress repository.ProgressRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	fanOutLimit int,
	logger zerolog.Logger,
) ProgressService {
	if fanOutLimit <= 0 {
		fanOutLimit = 8
	}

	return &progressService{
		users:       users,
		enrollments: enrollments,
		courses:     courses,
		progress:    progress,
		cache:       cache,
		cacheTTL:    cacheTTL,
		fanOutLimit: fanOutLimit,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		tracer:      otel.Tracer("github.com/teachme-ai/teachme-api/internal/service/progress"),
	}
}

func (s *progressService) GetSummary(ctx context.Context, studentID string) (dto.StudentProgressSummary, error) {
	cacheKey := fmt.Sprintf("progress:summary:%s", studentID)

	ctx, span := s.tracer.Start(ctx, "progress.summary", trace.WithAttributes(attribute.String("student.id", studentID)))
	defer span.End()

	// The existence check runs before the cache read so a student deleted
	// after being cached stops resolving immediately, not at TTL expiry.
	if _, err := s.users.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentProgressSummary{}, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get_user_failed")
		return dto.StudentProgressSummary{}, fmt.Errorf("get student %s: %w", studentID, err)
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var summary dto.StudentProgressSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				summary.CacheHit = true
				span.SetAttributes(attribute.Bool("progress.cache_hit", true))
				return summary, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress summary cache")
		}
	}

	enrollments, err := s.enrollments.ListActiveByUser(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_enrollments_failed")
		return dto.StudentProgressSummary{}, fmt.Errorf("list enrollments for %s: %w", studentID, err)
	}

	courses := make([]dto.CourseProgress, len(enrollments))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.fanOutLimit)

	for i, enrollment := range enrollments {
		group.Go(func() error {
			courses[i] = s.courseProgressDetail(groupCtx, studentID, enrollment)
			return nil
		})
	}
	_ = group.Wait()

	summary := buildSummary(studentID, courses)
	span.SetAttributes(
		attribute.Int("progress.total_courses", summary.TotalCourses),
		attribute.Int("progress.average", summary.AverageProgress),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress summary cache")
			}
		}
	}

	return summary, nil
}

func (s *progressService) ListCompletedCourses(ctx context.Context, studentID string) ([]dto.CompletedCourse, error) {
	ctx, span := s.tracer.Start(ctx, "progress.completed_courses", trace.WithAttributes(attribute.String("student.id", studentID)))
	defer span.End()

	if _, err := s.users.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get_user_failed")
		return nil, fmt.Errorf("get student %s: %w", studentID, err)
	}

	enrollments, err := s.enrollments.ListCompletedByUser(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_enrollments_failed")
		return nil, fmt.Errorf("list completed enrollments for %s: %w", studentID, err)
	}

	type slot struct {
		course dto.CompletedCourse
		ok     bool
	}
	slots := make([]slot, len(enrollments))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.fanOutLimit)

	for i, enrollment := range enrollments {
		group.Go(func() error {
			course, err := s.courses.GetByID(groupCtx, enrollment.CourseID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn().Err(err).Uint("course_id", enrollment.CourseID).Msg("failed to fetch completed course")
				}
				return nil
			}

			records, err := s.progress.ListForCourse(groupCtx, studentID, enrollment.CourseID)
			if err != nil {
				s.logger.Warn().Err(err).Uint("course_id", enrollment.CourseID).Msg("failed to fetch progress for completed course")
				records = nil
			}

			completedItems := 0
			for _, record := range records {
				if record.Status == models.ProgressStatusCompleted {
					completedItems++
				}
			}

			percentage := 0
			if len(records) > 0 {
				percentage = int(math.Round(float64(completedItems) / float64(len(records)) * 100))
			}

			slots[i] = slot{
				course: dto.CompletedCourse{
					ID:                    course.ID,
					Title:                 course.Title,
					Description:           course.Description,
					Status:                course.Status,
					CompletedAt:           enrollment.CompletedAt,
					Grade:                 enrollment.Grade,
					Feedback:              enrollment.Feedback,
					TotalContentItems:     len(records),
					CompletedContentItems: completedItems,
					CompletionPercentage:  percentage,
				},
				ok: true,
			}
			return nil
		})
	}
	_ = group.Wait()

	completed := make([]dto.CompletedCourse, 0, len(slots))
	for _, entry := range slots {
		if entry.ok {
			completed = append(completed, entry.course)
		}
	}

	return completed, nil
}

// courseProgressDetail derives the per-course summary line. A failed
// progress fetch degrades to a zeroed not_started entry rather than
// failing the whole summary.
func (s *progressService) courseProgressDetail(ctx context.Context, studentID string, enrollment models.Enrollment) dto.CourseProgress {
	records, err := s.progress.ListForCourse(ctx, studentID, enrollment.CourseID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", studentID).
			Uint("course_id", enrollment.CourseID).
			Msg("failed to fetch progress, degrading to zero")
		return dto.CourseProgress{
			CourseID: enrollment.CourseID,
			Progress: 0,
			Status:   models.ProgressStatusNotStarted,
		}
	}

	completedItems := 0
	for _, record := range records {
		if record.Status == models.ProgressStatusCompleted {
			completedItems++
		}
	}

	return dto.CourseProgress{
		CourseID:       enrollment.CourseID,
		Progress:       meanCompletion(records),
		CompletedItems: completedItems,
		TotalItems:     len(records),
		Status:         enrollment.Status,
	}
}

func buildSummary(studentID string, courses []dto.CourseProgress) dto.StudentProgressSummary {
	completed := 0
	inProgress := 0
	total := 0

	for _, course := range courses {
		total += course.Progress
		switch {
		case course.Progress == 100:
			completed++
		case course.Progress > 0 && course.Progress < 100:
			inProgress++
		}
	}

	average := 0
	if len(courses) > 0 {
		average = int(math.Round(float64(total) / float64(len(courses))))
	}

	if courses == nil {
		courses = []dto.CourseProgress{}
	}

	return dto.StudentProgressSummary{
		StudentID:         studentID,
		TotalCourses:      len(courses),
		CompletedCourses:  completed,
		InProgressCourses: inProgress,
		AverageProgress:   average,
		Courses:           courses,
	}
}
