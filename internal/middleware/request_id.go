package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDKey struct{}

var ridKey = requestIDKey{}

// RequestID ensures every request carries an identifier that threads
// through logs and audit records. An incoming X-Request-ID (or the older
// X-Correlation-ID) is propagated; otherwise one is generated.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get("X-Request-ID"))
		if incoming == "" {
			incoming = strings.TrimSpace(c.Get("X-Correlation-ID"))
		}
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals("request_id", incoming)
		c.Set("X-Request-ID", incoming)

		ctx := context.WithValue(c.Context(), ridKey, incoming)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RequestIDFromContext extracts the request identifier from a context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if value := ctx.Value(ridKey); value != nil {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestID returns the request identifier bound to the active request.
func GetRequestID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if value := c.Locals("request_id"); value != nil {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return RequestIDFromContext(c.Context())
}
