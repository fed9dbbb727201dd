package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/handler"
	"github.com/bulletin-app/bulletin-api/internal/service"
)

type mockUserService struct {
	list dto.UserListResponse
	user dto.UserResponse
	err  error
}

func (m *mockUserService) List(_ context.Context, query dto.ListQuery) (dto.UserListResponse, error) {
	return m.list, m.err
}

func (m *mockUserService) Get(_ context.Context, id uint) (dto.UserResponse, error) {
	return m.user, m.err
}

func (m *mockUserService) Create(_ context.Context, payload dto.UserCreateRequest, actor *service.Actor, meta service.RequestMeta) (dto.UserResponse, error) {
	return m.user, m.err
}

func (m *mockUserService) Update(_ context.Context, id uint, payload dto.UserUpdateRequest, actor *service.Actor, meta service.RequestMeta) (dto.UserResponse, error) {
	return m.user, m.err
}

func (m *mockUserService) Delete(_ context.Context, id uint, actor *service.Actor, meta service.RequestMeta) error {
	return m.err
}

func newUserApp(svc *mockUserService) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	group := app.Group("/api/users", passthrough(1, "admin", "Dana"))
	handler.NewUserHandler(svc, &mockKPIService{}, logger).Register(group)
	return app
}

func TestUserHandlerSelfDeleteForbidden(t *testing.T) {
	svc := &mockUserService{err: service.ErrCannotDeleteSelf}
	app := newUserApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/users/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "You cannot delete your own account", body.Message)
}

func TestUserHandlerDeleteNotFound(t *testing.T) {
	svc := &mockUserService{err: service.ErrUserNotFound}
	app := newUserApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/users/404", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUserHandlerEmailConflict(t *testing.T) {
	svc := &mockUserService{err: service.ErrEmailTaken}
	app := newUserApp(svc)

	payload := `{"name":"Dana","email":"dana@example.com","password":"hunter22","role":"user"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUserHandlerKPIRoute(t *testing.T) {
	app := newUserApp(&mockUserService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/kpi", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
