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

// ProfileHandler exposes the user profile endpoints.
type ProfileHandler struct {
	profiles service.ProfileService
	audit    service.AuditRecorder
	logger   zerolog.Logger
}

// NewProfileHandler creates a new handler instance.
func NewProfileHandler(profiles service.ProfileService, audit service.AuditRecorder, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		audit:    audit,
		logger:   logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches the profile endpoints.
func (h *ProfileHandler) Register(api fiber.Router) {
	profile := api.Group("/profile")
	profile.Get("/:id", h.get)
	profile.Put("/:id", h.update)
	profile.Post("/:id/avatar", h.uploadAvatar)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	id := c.Params("id")

	profile, err := h.profiles.GetProfile(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "User not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("user_id", id).Msg("failed to fetch profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch profile")
	}

	return utils.SendSuccess(c, profile)
}

func (h *ProfileHandler) update(c *fiber.Ctx) error {
	id := c.Params("id")

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	profile, err := h.profiles.UpdateProfile(c.UserContext(), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "Invalid request body")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "User not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("user_id", id).Msg("failed to update profile")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to update profile")
		}
	}

	h.recordAudit(c, "update_profile", id, nil)

	return utils.SendSuccess(c, profile)
}

func (h *ProfileHandler) uploadAvatar(c *fiber.Ctx) error {
	id := c.Params("id")

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "Avatar file is required")
	}

	result, err := h.profiles.UploadAvatar(c.UserContext(), id, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrAvatarTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "Avatar exceeds maximum allowed size")
		case errors.Is(err, service.ErrAvatarTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "Avatar must be an image")
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("user_id", id).Msg("failed to upload avatar")
			return utils.SendError(c, fiber.StatusInternalServerError, "Failed to upload avatar")
		}
	}

	h.recordAudit(c, "update_profile_picture", id, map[string]interface{}{"url": result.URL})

	return utils.SendSuccess(c, result)
}

func (h *ProfileHandler) recordAudit(c *fiber.Ctx, action, userID string, details map[string]interface{}) {
	if h.audit == nil {
		return
	}

	h.audit.Record(c.UserContext(), service.AuditEntry{
		Actor:       middleware.AuditActorFromRequest(c),
		Action:      action,
		TargetTable: "users",
		TargetID:    userID,
		RequestID:   middleware.GetRequestID(c),
		Details:     details,
	})
}
