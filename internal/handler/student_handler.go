package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teachme-ai/teachme-api/internal/middleware"
	"github.com/teachme-ai/teachme-api/internal/service"
	"github.com/teachme-ai/teachme-api/internal/utils"
)

// StudentHandler exposes the student aggregation endpoints.
type StudentHandler struct {
	students service.StudentService
	progress service.ProgressService
	audit    service.AuditRecorder
	logger   zerolog.Logger
}

// NewStudentHandler creates a new handler instance.
func NewStudentHandler(students service.StudentService, progress service.ProgressService, audit service.AuditRecorder, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students: students,
		progress: progress,
		audit:    audit,
		logger:   logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches the student endpoints. The search route must be
// declared before the :id routes so "search" is never matched as an id.
func (h *StudentHandler) Register(api fiber.Router) {
	students := api.Group("/students")
	students.Get("/", h.list)
	students.Get("/search", h.search)
	students.Get("/:id", h.get)
	students.Get("/:id/progress", h.progressSummary)
	students.Get("/:id/completed", h.completedCourses)

	api.Get("/courses/:courseId/students", h.listByCourse)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	roster, err := h.students.ListStudents(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch students")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch students")
	}

	h.recordAudit(c, "view_students_list", "users", "", map[string]interface{}{"count": len(roster)})

	return utils.SendList(c, roster, len(roster))
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	id := c.Params("id")

	student, err := h.students.GetStudent(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", id).Msg("failed to fetch student")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch student data")
	}

	h.recordAudit(c, "view_student", "users", id, nil)

	return utils.SendSuccess(c, student)
}

func (h *StudentHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseCourseID(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid course id")
	}

	students, err := h.students.ListByCourse(c.UserContext(), courseID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("course_id", courseID).Msg("failed to fetch course students")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch course students")
	}

	h.recordAudit(c, "view_course_students", "courses", strconv.FormatUint(uint64(courseID), 10), map[string]interface{}{"count": len(students)})

	return utils.SendList(c, students, len(students))
}

func (h *StudentHandler) progressSummary(c *fiber.Ctx) error {
	id := c.Params("id")

	summary, err := h.progress.GetSummary(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", id).Msg("failed to fetch student progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch student progress")
	}

	h.recordAudit(c, "view_student_progress", "users", id, map[string]interface{}{"total_courses": summary.TotalCourses})

	return utils.SendSuccess(c, summary)
}

func (h *StudentHandler) completedCourses(c *fiber.Ctx) error {
	id := c.Params("id")

	completed, err := h.progress.ListCompletedCourses(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", id).Msg("failed to fetch completed courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch completed courses")
	}

	h.recordAudit(c, "view_completed_courses", "users", id, map[string]interface{}{"count": len(completed)})

	return utils.SendList(c, completed, len(completed))
}

func (h *StudentHandler) search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "Search query is required")
	}

	results, err := h.students.SearchStudents(c.UserContext(), query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to search students")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to search students")
	}

	h.recordAudit(c, "search_students", "users", "", map[string]interface{}{"query": query, "results": len(results)})

	return utils.SendList(c, results, len(results))
}

func (h *StudentHandler) recordAudit(c *fiber.Ctx, action, targetTable, targetID string, details map[string]interface{}) {
	if h.audit == nil {
		return
	}

	h.audit.Record(c.UserContext(), service.AuditEntry{
		Actor:       middleware.AuditActorFromRequest(c),
		Action:      action,
		TargetTable: targetTable,
		TargetID:    targetID,
		SessionID:   strings.TrimSpace(c.Get("X-Session-ID")),
		IPAddress:   c.IP(),
		UserAgent:   c.Get("User-Agent"),
		RequestID:   middleware.GetRequestID(c),
		Details:     details,
	})
}
