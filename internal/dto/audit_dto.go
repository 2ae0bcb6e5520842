package dto

import (
	"time"

	"gorm.io/datatypes"

	"github.com/teachme-ai/teachme-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AuditLogResponse serializes one audit trail entry.
type AuditLogResponse struct {
	ID          uint              `json:"id"`
	ActorUserID string            `json:"actor_user_id"`
	ActorRole   string            `json:"actor_role"`
	ActorSource string            `json:"actor_source"`
	Action      string            `json:"action"`
	TargetTable string            `json:"target_table"`
	TargetID    string            `json:"target_id"`
	SessionID   string            `json:"session_id"`
	IPAddress   string            `json:"ip_address"`
	UserAgent   string            `json:"user_agent"`
	RequestID   string            `json:"request_id"`
	Details     datatypes.JSONMap `json:"details"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewAuditLogResponse maps an audit row to its response shape.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:          entry.ID,
		ActorUserID: entry.ActorUserID,
		ActorRole:   entry.ActorRole,
		ActorSource: entry.ActorSource,
		Action:      entry.Action,
		TargetTable: entry.TargetTable,
		TargetID:    entry.TargetID,
		SessionID:   entry.SessionID,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		RequestID:   entry.RequestID,
		Details:     entry.Details,
		CreatedAt:   entry.CreatedAt,
	}
}

// AuditListRequest filters the audit trail listing.
type AuditListRequest struct {
	Page        int
	PageSize    int
	Action      string
	ActorUserID string
	RequestID   string
}

// AuditListResponse wraps a paginated audit listing.
type AuditListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}
