package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/teachme-ai/teachme-api/internal/models"
	"github.com/teachme-ai/teachme-api/internal/service"
)

// Audit records every incoming request before it is routed. The write is
// fire-and-forget: a failed insert is logged and counted by the audit
// service but never fails or delays the request.
func Audit(recorder service.AuditRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry := service.AuditEntry{
			Actor:       AuditActorFromRequest(c),
			Action:      "api_call",
			SessionID:   strings.TrimSpace(c.Get("X-Session-ID")),
			IPAddress:   clientIP(c),
			UserAgent:   c.Get("User-Agent"),
			RequestID:   GetRequestID(c),
			Details: map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
			},
		}

		recorder.Record(c.UserContext(), entry)

		return c.Next()
	}
}

// AuditActorFromRequest resolves the acting identity for audit purposes.
// A JWT-verified identity wins; the legacy x-user-id/x-user-role headers
// are only a fallback and the record keeps track of which source was
// used, since headers are client supplied and unauthenticated.
func AuditActorFromRequest(c *fiber.Ctx) service.AuditActor {
	if id, ok := c.Locals("auth_user_id").(string); ok && id != "" {
		role, _ := c.Locals("auth_user_role").(string)
		return service.AuditActor{UserID: id, Role: role, Source: models.AuditSourceToken}
	}

	headerID := strings.TrimSpace(c.Get("X-User-ID"))
	if headerID != "" {
		return service.AuditActor{
			UserID: headerID,
			Role:   strings.ToLower(strings.TrimSpace(c.Get("X-User-Role"))),
			Source: models.AuditSourceHeader,
		}
	}

	return service.AuditActor{Source: models.AuditSourceNone}
}

func clientIP(c *fiber.Ctx) string {
	for _, header := range []string{"X-Forwarded-For", "CF-Connecting-IP", "X-Real-IP"} {
		if value := strings.TrimSpace(c.Get(header)); value != "" {
			// X-Forwarded-For may carry a chain; the client is first.
			if idx := strings.IndexByte(value, ','); idx >= 0 {
				return strings.TrimSpace(value[:idx])
			}
			return value
		}
	}
	return c.IP()
}
