package handler_test

import (
	"context"
	"encoding/json"
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

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

// passthrough stands in for the JWT middleware, injecting a fixed identity.
func passthrough(id uint, role, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id)
		c.Locals("user_role", role)
		c.Locals("user_name", name)
		return c.Next()
	}
}

func allow(c *fiber.Ctx) error { return c.Next() }

type mockPostService struct {
	list      dto.PostListResponse
	post      dto.PostResponse
	err       error
	lastQuery dto.ListQuery
	lastActor *service.Actor
}

func (m *mockPostService) List(_ context.Context, query dto.ListQuery) (dto.PostListResponse, error) {
	m.lastQuery = query
	return m.list, m.err
}

func (m *mockPostService) Get(_ context.Context, id uint) (dto.PostResponse, error) {
	return m.post, m.err
}

func (m *mockPostService) Create(_ context.Context, payload dto.PostCreateRequest, actor *service.Actor, meta service.RequestMeta) (dto.PostResponse, error) {
	m.lastActor = actor
	return m.post, m.err
}

func (m *mockPostService) Update(_ context.Context, id uint, payload dto.PostUpdateRequest, actor *service.Actor, meta service.RequestMeta) (dto.PostResponse, error) {
	m.lastActor = actor
	return m.post, m.err
}

func (m *mockPostService) Delete(_ context.Context, id uint, actor *service.Actor, meta service.RequestMeta) error {
	return m.err
}

func (m *mockPostService) SetPinned(_ context.Context, id uint, pinned bool, actor *service.Actor, meta service.RequestMeta) (dto.PostResponse, error) {
	m.post.IsPinned = pinned
	return m.post, m.err
}

type mockExportService struct {
	data     []byte
	filename string
	err      error
}

func (m *mockExportService) ExportPosts(_ context.Context, query dto.ListQuery, actor *service.Actor, meta service.RequestMeta) ([]byte, string, error) {
	return m.data, m.filename, m.err
}

type mockKPIService struct {
	response dto.KPIResponse
	err      error
}

func (m *mockKPIService) PostKPI(_ context.Context, req dto.KPIRequest) (dto.KPIResponse, error) {
	return m.response, m.err
}

func (m *mockKPIService) UserKPI(_ context.Context, req dto.KPIRequest) (dto.KPIResponse, error) {
	return m.response, m.err
}

func newPostApp(svc *mockPostService, export *mockExportService, kpi *mockKPIService) *fiber.App {
	logger := zerolog.New(io.Discard)
	app := fiber.New()
	h := handler.NewPostHandler(svc, export, kpi, logger)
	h.Register(app.Group("/api/posts"), passthrough(1, "admin", "Dana"), allow, allow)
	return app
}

func TestPostHandlerListParsesQuery(t *testing.T) {
	svc := &mockPostService{list: dto.PostListResponse{
		Data:        []dto.PostResponse{{ID: 1, Title: "Hello"}},
		Total:       1,
		CurrentPage: 2,
		LastPage:    3,
	}}
	app := newPostApp(svc, &mockExportService{}, &mockKPIService{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts?search=fire&status=Published&page=2&per_page=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, "fire", svc.lastQuery.Search)
	require.Equal(t, "Published", svc.lastQuery.Status)
	require.Equal(t, 2, svc.lastQuery.Page)
	require.Equal(t, 5, svc.lastQuery.PerPage)

	var body struct {
		Success bool                 `json:"success"`
		Data    dto.PostListResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, int64(1), body.Data.Total)
	require.Equal(t, 3, body.Data.LastPage)
}

func TestPostHandlerGetNotFound(t *testing.T) {
	svc := &mockPostService{err: service.ErrPostNotFound}
	app := newPostApp(svc, &mockExportService{}, &mockKPIService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/99", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPostHandlerGetRejectsBadID(t *testing.T) {
	app := newPostApp(&mockPostService{}, &mockExportService{}, &mockKPIService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPostHandlerCreateReturns201WithActor(t *testing.T) {
	svc := &mockPostService{post: dto.PostResponse{ID: 7, Title: "Hello"}}
	app := newPostApp(svc, &mockExportService{}, &mockKPIService{})

	payload := `{"title":"Hello","author":"Dana","category":"General","status":"Published","content":"x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.NotNil(t, svc.lastActor)
	require.Equal(t, uint(1), svc.lastActor.ID)
	require.Equal(t, "Dana", svc.lastActor.Name)
}

func TestPostHandlerPinTogglesState(t *testing.T) {
	svc := &mockPostService{post: dto.PostResponse{ID: 7, Title: "Hello"}}
	app := newPostApp(svc, &mockExportService{}, &mockKPIService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/posts/7/pin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data    dto.PostResponse `json:"data"`
		Message string           `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Data.IsPinned)
	require.Equal(t, "Post pinned", body.Message)
}

func TestPostHandlerExportSetsDownloadHeaders(t *testing.T) {
	export := &mockExportService{data: []byte("%PDF-1.4 fake"), filename: "posts-20260615-090500.pdf"}
	app := newPostApp(&mockPostService{}, export, &mockKPIService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "posts-20260615-090500.pdf")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, export.data, body)
}

func TestPostHandlerKPIRoutePrecedesID(t *testing.T) {
	kpi := &mockKPIService{response: dto.KPIResponse{TimeRange: "this_month", Total: 12}}
	app := newPostApp(&mockPostService{}, &mockExportService{}, kpi)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/kpi?time_range=this_month", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.KPIResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, int64(12), body.Data.Total)
}
