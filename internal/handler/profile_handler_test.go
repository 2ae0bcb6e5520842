package handler_test

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/teachme-ai/teachme-api/internal/dto"
	"github.com/teachme-ai/teachme-api/internal/handler"
	"github.com/teachme-ai/teachme-api/internal/service"
)

type mockProfileService struct {
	profile   dto.ProfileResponse
	avatar    dto.AvatarUploadResponse
	getErr    error
	updateErr error
	uploadErr error
}

func (m *mockProfileService) GetProfile(context.Context, string) (dto.ProfileResponse, error) {
	if m.getErr != nil {
		return dto.ProfileResponse{}, m.getErr
	}
	return m.profile, nil
}

func (m *mockProfileService) UpdateProfile(context.Context, string, dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	if m.updateErr != nil {
		return dto.ProfileResponse{}, m.updateErr
	}
	return m.profile, nil
}

func (m *mockProfileService) UploadAvatar(context.Context, string, *multipart.FileHeader) (dto.AvatarUploadResponse, error) {
	if m.uploadErr != nil {
		return dto.AvatarUploadResponse{}, m.uploadErr
	}
	return m.avatar, nil
}

func newProfileApp(svc *mockProfileService) *fiber.App {
	app := fiber.New()
	handler.NewProfileHandler(svc, nil, zerolog.New(io.Discard)).Register(app.Group("/api"))
	return app
}

func TestProfileHandlerGet(t *testing.T) {
	svc := &mockProfileService{profile: dto.ProfileResponse{ID: "u-1", FullName: "Alice"}}
	app := newProfileApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profile/u-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                `json:"success"`
		Data    dto.ProfileResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "Alice", body.Data.FullName)
}

func TestProfileHandlerGetNotFound(t *testing.T) {
	svc := &mockProfileService{getErr: service.ErrStudentNotFound}
	app := newProfileApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profile/u-missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "User not found", body.Message)
}

func TestProfileHandlerUpdate(t *testing.T) {
	svc := &mockProfileService{profile: dto.ProfileResponse{ID: "u-1", Bio: "Learning Go"}}
	app := newProfileApp(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/profile/u-1", strings.NewReader(`{"bio":"Learning Go"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProfileHandlerUpdateInvalidBody(t *testing.T) {
	app := newProfileApp(&mockProfileService{})

	req := httptest.NewRequest(http.MethodPut, "/api/profile/u-1", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProfileHandlerAvatarRequiresFile(t *testing.T) {
	app := newProfileApp(&mockProfileService{})

	req := httptest.NewRequest(http.MethodPost, "/api/profile/u-1/avatar", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProfileHandlerAvatarErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"too large", service.ErrAvatarTooLarge, fiber.StatusRequestEntityTooLarge},
		{"bad type", service.ErrAvatarTypeNotAllowed, fiber.StatusUnsupportedMediaType},
		{"unknown user", service.ErrStudentNotFound, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockProfileService{uploadErr: tc.err}
			app := newProfileApp(svc)

			body, contentType := multipartAvatar(t)
			req := httptest.NewRequest(http.MethodPost, "/api/profile/u-1/avatar", body)
			req.Header.Set("Content-Type", contentType)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func multipartAvatar(t *testing.T) (io.Reader, string) {
	t.Helper()
	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return strings.NewReader(body.String()), writer.FormDataContentType()
}
