package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/models"
	"github.com/teachme-ai/teachme-api/internal/observability"
	"github.com/teachme-ai/teachme-api/internal/repository"
)

// AuditActor identifies who performed an audited action and how the
// identity was established.
type AuditActor struct {
	UserID string
	Role   string
	Source string
}

// AuditEntry captures the details required to persist one audit record.
type AuditEntry struct {
	Actor       AuditActor
	Action      string
	TargetTable string
	TargetID    string
	SessionID   string
	IPAddress   string
	UserAgent   string
	RequestID   string
	Details     map[string]interface{}
}

// AuditRecorder records audit entries without ever surfacing a failure
// to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditService exposes fire-and-forget recording plus trail queries.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	repo    repository.AuditLogRepository
	logger  zerolog.Logger
	timeout time.Duration
}

// NewAuditService constructs the audit service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:    repo,
		logger:  logger.With().Str("component", "audit_service").Logger(),
		timeout: 5 * time.Second,
	}
}

// Record persists an audit entry. Insert failures are logged and counted
// but deliberately swallowed so auditing can never block or fail the
// request being audited.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		s.logger.Warn().Msg("audit entry dropped: action missing")
		observability.AuditDropped().Inc()
		return
	}

	source := entry.Actor.Source
	if source == "" {
		source = models.AuditSourceNone
	}

	model := models.AuditLog{
		ActorUserID: strings.TrimSpace(entry.Actor.UserID),
		ActorRole:   strings.ToLower(strings.TrimSpace(entry.Actor.Role)),
		ActorSource: source,
		Action:      action,
		TargetTable: strings.TrimSpace(entry.TargetTable),
		TargetID:    strings.TrimSpace(entry.TargetID),
		SessionID:   entry.SessionID,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		RequestID:   entry.RequestID,
		Details:     sanitizeDetails(entry.Details),
	}

	// The insert runs on a detached context so a cancelled request
	// cannot abort the write mid-flight.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.repo.Create(writeCtx, &model); err != nil {
		s.logger.Error().Err(err).
			Str("action", action).
			Str("request_id", entry.RequestID).
			Msg("failed to persist audit record")
		observability.AuditDropped().Inc()
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	filter := repository.AuditLogFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		Action:      strings.ToLower(strings.TrimSpace(req.Action)),
		ActorUserID: strings.TrimSpace(req.ActorUserID),
		RequestID:   strings.TrimSpace(req.RequestID),
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAuditLogResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AuditListResponse{Items: items, Pagination: pagination}, nil
}

func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
