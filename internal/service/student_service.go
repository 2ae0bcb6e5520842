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

// ErrStudentNotFound indicates the requested student does not exist or
// has been soft deleted.
var ErrStudentNotFound = errors.New("student not found")

// courseTitleFallback is used when the course row for an enrollment
// cannot be read while building a course roster.
const courseTitleFallback = "Current Course"

// StudentService joins users, enrollments, courses and progress rows
// into the nested student payloads served by the API. It is strictly a
// read/derive layer.
type StudentService interface {
	ListStudents(ctx context.Context) ([]dto.StudentResponse, error)
	GetStudent(ctx context.Context, id string) (dto.StudentResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.StudentResponse, error)
	SearchStudents(ctx context.Context, query string) ([]dto.StudentResponse, error)
}

type studentService struct {
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

// NewStudentService builds the student aggregation service. fanOutLimit
// bounds how many per-student and per-enrollment sub-fetches run
// concurrently.
func NewStudentService(
	users repository.UserRepository,
	enrollments repository.EnrollmentRepository,
	courses repository.CourseRepository,
	progress repository.ProgressRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	fanOutLimit int,
	logger zerolog.Logger,
) StudentService {
	if fanOutLimit <= 0 {
		fanOutLimit = 8
	}

	return &studentService{
		users:       users,
		enrollments: enrollments,
		courses:     courses,
		progress:    progress,
		cache:       cache,
		cacheTTL:    cacheTTL,
		fanOutLimit: fanOutLimit,
		logger:      logger.With().Str("component", "student_service").Logger(),
		tracer:      otel.Tracer("github.com/teachme-ai/teachme-api/internal/service/student"),
	}
}

func (s *studentService) ListStudents(ctx context.Context) ([]dto.StudentResponse, error) {
	const cacheKey = "students:roster"

	ctx, span := s.tracer.Start(ctx, "students.roster")
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var roster []dto.StudentResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &roster); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("roster.cache_hit", true))
				return roster, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read roster cache")
		}
	}

	users, err := s.users.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_users_failed")
		return nil, fmt.Errorf("list students: %w", err)
	}
	span.SetAttributes(attribute.Int("roster.student_count", len(users)))

	roster := make([]dto.StudentResponse, len(users))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.fanOutLimit)

	for i, user := range users {
		group.Go(func() error {
			roster[i] = dto.NewStudentResponse(user, s.coursesForStudent(groupCtx, user.ID))
			return nil
		})
	}

	// Per-student workers degrade on failure instead of erroring, so
	// the only wait outcome is completion.
	_ = group.Wait()

	if s.cache != nil {
		if payload, err := json.Marshal(roster); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store roster cache")
			}
		}
	}

	return roster, nil
}

func (s *studentService) GetStudent(ctx context.Context, id string) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "students.get", trace.WithAttributes(attribute.String("student.id", id)))
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "get_user_failed")
		return dto.StudentResponse{}, fmt.Errorf("get student %s: %w", id, err)
	}

	enrollments, err := s.enrollments.ListActiveByUser(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_enrollments_failed")
		return dto.StudentResponse{}, fmt.Errorf("list enrollments for %s: %w", id, err)
	}

	return dto.NewStudentResponse(user, s.coursesForEnrollments(ctx, user.ID, enrollments)), nil
}

func (s *studentService) ListByCourse(ctx context.Context, courseID uint) ([]dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "students.by_course", trace.WithAttributes(attribute.Int64("course.id", int64(courseID))))
	defer span.End()

	enrollments, err := s.enrollments.ListActiveByCourse(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_enrollments_failed")
		return nil, fmt.Errorf("list enrollments for course %d: %w", courseID, err)
	}

	// One title lookup for the whole roster. The fallback placeholder
	// mirrors the behavior callers have depended on when the course
	// row is unreadable.
	courseTitle := courseTitleFallback
	if course, err := s.courses.GetByID(ctx, courseID); err == nil {
		courseTitle = course.Title
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to fetch course title")
	}

	type slot struct {
		response dto.StudentResponse
		ok       bool
	}
	slots := make([]slot, len(enrollments))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.fanOutLimit)

	for i, enrollment := range enrollments {
		group.Go(func() error {
			user, err := s.users.GetByID(groupCtx, enrollment.UserID)
			if err != nil {
				// Deleted or unreadable users drop out of the roster.
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn().Err(err).Str("user_id", enrollment.UserID).Msg("failed to fetch enrolled student")
				}
				return nil
			}

			courses := []dto.StudentCourse{{
				ID:       courseID,
				Title:    courseTitle,
				Progress: s.courseProgress(groupCtx, enrollment.UserID, courseID),
				Status:   enrollment.Status,
			}}
			slots[i] = slot{response: dto.NewStudentResponse(user, courses), ok: true}
			return nil
		})
	}
	_ = group.Wait()

	students := make([]dto.StudentResponse, 0, len(slots))
	for _, entry := range slots {
		if entry.ok {
			students = append(students, entry.response)
		}
	}

	span.SetAttributes(attribute.Int("roster.student_count", len(students)))
	return students, nil
}

func (s *studentService) SearchStudents(ctx context.Context, query string) ([]dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "students.search")
	defer span.End()

	users, err := s.users.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search_users_failed")
		return nil, fmt.Errorf("search students: %w", err)
	}

	// Search results are a lightweight listing: enrollments are
	// attached with synthesized titles and zero progress rather than
	// paying the full per-course aggregation.
	results := make([]dto.StudentResponse, len(users))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.fanOutLimit)

	for i, user := range users {
		group.Go(func() error {
			courses := []dto.StudentCourse{}
			enrollments, err := s.enrollments.ListActiveByUser(groupCtx, user.ID)
			if err != nil {
				s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to fetch enrollments for search result")
			} else {
				for _, enrollment := range enrollments {
					courses = append(courses, dto.StudentCourse{
						ID:       enrollment.CourseID,
						Title:    fmt.Sprintf("Course %d", enrollment.CourseID),
						Progress: 0,
						Status:   enrollment.Status,
					})
				}
			}
			results[i] = dto.NewStudentResponse(user, courses)
			return nil
		})
	}
	_ = group.Wait()

	span.SetAttributes(attribute.Int("search.result_count", len(results)))
	return results, nil
}

// coursesForStudent fetches enrollments for one student and degrades to
// an empty course list when the enrollment lookup fails, so a single bad
// student never fails a whole roster.
func (s *studentService) coursesForStudent(ctx context.Context, userID string) []dto.StudentCourse {
	enrollments, err := s.enrollments.ListActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to fetch enrollments, degrading to empty course list")
		return []dto.StudentCourse{}
	}

	return s.coursesForEnrollments(ctx, userID, enrollments)
}

// coursesForEnrollments resolves course details and derived progress for
// each enrollment. An unreadable course row drops that entry; an
// unreadable progress set degrades that course to zero progress.
func (s *studentService) coursesForEnrollments(ctx context.Context, userID string, enrollments []models.Enrollment) []dto.StudentCourse {
	type slot struct {
		course dto.StudentCourse
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
					s.logger.Warn().Err(err).Uint("course_id", enrollment.CourseID).Msg("failed to fetch course")
				}
				return nil
			}

			slots[i] = slot{
				course: dto.StudentCourse{
					ID:       course.ID,
					Title:    course.Title,
					Progress: s.courseProgress(groupCtx, userID, enrollment.CourseID),
					Status:   enrollment.Status,
				},
				ok: true,
			}
			return nil
		})
	}
	_ = group.Wait()

	courses := make([]dto.StudentCourse, 0, len(slots))
	for _, entry := range slots {
		if entry.ok {
			courses = append(courses, entry.course)
		}
	}

	return courses
}

// courseProgress derives the rounded mean completion percentage for one
// (user, course) pair; zero when no rows exist or the fetch fails.
func (s *studentService) courseProgress(ctx context.Context, userID string, courseID uint) int {
	records, err := s.progress.ListForCourse(ctx, userID, courseID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", userID).
			Uint("course_id", courseID).
			Msg("failed to fetch progress, degrading to zero")
		return 0
	}

	return meanCompletion(records)
}

// meanCompletion computes round(mean(completion_percentage)) over the
// given rows, defined as 0 for an empty set.
func meanCompletion(records []models.ProgressRecord) int {
	if len(records) == 0 {
		return 0
	}

	var total float64
	for _, record := range records {
		total += record.CompletionPercentage
	}

	return int(math.Round(total / float64(len(records))))
}
