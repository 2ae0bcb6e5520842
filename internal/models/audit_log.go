package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actor identity sources. Header-derived identity is client
// supplied and unauthenticated; token-derived identity is verified.
const (
	AuditSourceToken  = "token"
	AuditSourceHeader = "header"
	AuditSourceNone   = "anonymous"
)

// AuditLog records a single API request or mutation for the audit trail.
// Writes are fire-and-forget; a failed insert never blocks a request.
type AuditLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ActorUserID string            `gorm:"size:36;index" json:"actor_user_id"`
	ActorRole   string            `gorm:"size:32" json:"actor_role"`
	ActorSource string            `gorm:"size:16;not null;default:anonymous" json:"actor_source"`
	Action      string            `gorm:"size:64;not null" json:"action"`
	TargetTable string            `gorm:"size:64" json:"target_table"`
	TargetID    string            `gorm:"size:64" json:"target_id"`
	SessionID   string            `gorm:"size:64" json:"session_id"`
	IPAddress   string            `gorm:"size:64" json:"ip_address"`
	UserAgent   string            `gorm:"size:512" json:"user_agent"`
	RequestID   string            `gorm:"size:64;index" json:"request_id"`
	Details     datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt   time.Time         `json:"created_at"`
}
