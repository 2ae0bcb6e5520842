package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/handler"
	"github.com/teachme-ai/teachme-api/internal/service"
)

type mockAuditService struct {
	recordingAudit
	lastReq  dto.AuditListRequest
	response dto.AuditListResponse
	err      error
}

func (m *mockAuditService) List(_ context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return dto.AuditListResponse{}, m.err
	}
	return m.response, nil
}

func newAuditApp(svc service.AuditService) *fiber.App {
	app := fiber.New()
	handler.NewAuditHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api"))
	return app
}

func TestAuditHandlerListDefaults(t *testing.T) {
	svc := &mockAuditService{response: dto.AuditListResponse{
		Items:      []dto.AuditLogResponse{{ID: 1, Action: "api_call"}},
		Pagination: dto.PaginationMeta{Page: 1, PageSize: 50, TotalItems: 1, TotalPages: 1},
	}}
	app := newAuditApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 1, svc.lastReq.Page)
	require.Equal(t, 50, svc.lastReq.PageSize)

	var body struct {
		Success bool                  `json:"success"`
		Data    dto.AuditListResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data.Items, 1)
}

func TestAuditHandlerListFilters(t *testing.T) {
	svc := &mockAuditService{}
	app := newAuditApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?page=3&page_size=10&action=view_student&actor=u-1&request_id=req-9", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 3, svc.lastReq.Page)
	require.Equal(t, 10, svc.lastReq.PageSize)
	require.Equal(t, "view_student", svc.lastReq.Action)
	require.Equal(t, "u-1", svc.lastReq.ActorUserID)
	require.Equal(t, "req-9", svc.lastReq.RequestID)
}

func TestAuditHandlerListClampsPageSize(t *testing.T) {
	svc := &mockAuditService{}
	app := newAuditApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs?page_size=5000", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 50, svc.lastReq.PageSize)
}
