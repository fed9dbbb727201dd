package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bulletin-app/bulletin-api/internal/auth"
	"github.com/bulletin-app/bulletin-api/internal/models"
)

const testSecret = "test-secret"

func protectedApp(denylist auth.TokenDenylist) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret, denylist, zerolog.New(io.Discard)))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})
	return app
}

func issueTestToken(t *testing.T) string {
	t.Helper()
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(models.User{ID: 7, Name: "Dana", Role: models.RoleAdmin})
	require.NoError(t, err)
	return token
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := protectedApp(nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := protectedApp(nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsForgedToken(t *testing.T) {
	app := protectedApp(nil)

	forged := auth.NewTokenIssuer("some-other-secret", time.Hour)
	token, err := forged.Issue(models.User{ID: 7, Role: models.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsRevokedToken(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	denylist := auth.NewRedisDenylist(client)
	app := protectedApp(denylist)

	token := issueTestToken(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, denylist.Revoke(context.Background(), token, time.Now().Add(time.Hour)))

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type failingDenylist struct{}

func (failingDenylist) Revoke(context.Context, string, time.Time) error { return nil }

func (failingDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestJWTProtectedAcceptsTokenWhenDenylistUnavailable(t *testing.T) {
	app := protectedApp(failingDenylist{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
