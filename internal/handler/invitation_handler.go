package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/middleware"
	"github.com/teachme-ai/teachme-api/internal/service"
	"github.com/teachme-ai/teachme-api/internal/utils"
)

// InvitationHandler exposes the invitation lookup and acceptance flow.
type InvitationHandler struct {
	invitations service.InvitationService
	audit       service.AuditRecorder
	logger      zerolog.Logger
}

// NewInvitationHandler creates a new handler instance.
func NewInvitationHandler(invitations service.InvitationService, audit service.AuditRecorder, logger zerolog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		audit:       audit,
		logger:      logger.With().Str("component", "invitation_handler").Logger(),
	}
}

// Register attaches the invitation endpoints.
func (h *InvitationHandler) Register(api fiber.Router) {
	invitations := api.Group("/invitations")
	invitations.Get("/:token", h.get)
	invitations.Post("/:token/accept", h.accept)
}

func (h *InvitationHandler) get(c *fiber.Ctx) error {
	token := c.Params("token")

	details, err := h.invitations.GetDetails(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Invitation not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch invitation")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch invitation")
	}

	return utils.SendSuccess(c, details)
}

func (h *InvitationHandler) accept(c *fiber.Ctx) error {
	token := c.Params("token")

	var req dto.AcceptInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.invitations.Accept(c.UserContext(), token, req)
	if err != nil {
		return h.acceptError(c, err)
	}

	if h.audit != nil {
		h.audit.Record(c.UserContext(), service.AuditEntry{
			Actor:       middleware.AuditActorFromRequest(c),
			Action:      "accept_invitation",
			TargetTable: "invitations",
			TargetID:    token,
			RequestID:   middleware.GetRequestID(c),
			Details: map[string]interface{}{
				"course_id":     result.CourseID,
				"enrollment_id": result.EnrollmentID,
			},
		})
	}

	return utils.SendMessage(c, "Invitation accepted", result)
}

func (h *InvitationHandler) acceptError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	case errors.Is(err, service.ErrInvitationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Invitation not found")
	case errors.Is(err, service.ErrInvitationExpired):
		return utils.SendError(c, fiber.StatusGone, "This invitation has expired")
	case errors.Is(err, service.ErrInvitationCancelled):
		return utils.SendError(c, fiber.StatusGone, "This invitation has been cancelled")
	case errors.Is(err, service.ErrInvitationExhausted):
		return utils.SendError(c, fiber.StatusConflict, "This invitation has reached its maximum usage limit")
	case errors.Is(err, service.ErrInvitationAlreadyAccepted):
		return utils.SendError(c, fiber.StatusConflict, "This invitation has already been accepted")
	case errors.Is(err, service.ErrInvitationEmailMismatch):
		return utils.SendError(c, fiber.StatusForbidden, "This invitation is for a different email address")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to accept invitation")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to accept invitation")
	}
}
