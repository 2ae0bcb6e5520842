package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/service"
	"github.com/teachme-ai/teachme-api/internal/utils"
)

const (
	auditDefaultPageSize = 50
	auditMaxPageSize     = 200
)

// AuditHandler exposes the audit trail listing.
type AuditHandler struct {
	audit  service.AuditService
	logger zerolog.Logger
}

// NewAuditHandler creates a new handler instance.
func NewAuditHandler(audit service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches the audit trail endpoint.
func (h *AuditHandler) Register(api fiber.Router) {
	api.Get("/audit-logs", h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", auditDefaultPageSize)
	if pageSize < 1 || pageSize > auditMaxPageSize {
		pageSize = auditDefaultPageSize
	}

	req := dto.AuditListRequest{
		Page:        page,
		PageSize:    pageSize,
		Action:      strings.TrimSpace(c.Query("action")),
		ActorUserID: strings.TrimSpace(c.Query("actor")),
		RequestID:   strings.TrimSpace(c.Query("request_id")),
	}

	result, err := h.audit.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch audit trail")
		return utils.SendError(c, fiber.StatusInternalServerError, "Failed to fetch audit logs")
	}

	return utils.SendSuccess(c, result)
}
