package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sakashimaa/go-shop-api/internal/auth"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()

	chain := append([]fiber.Handler{}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		userID, _ := UserID(c)
		return c.JSON(fiber.Map{"userId": userID})
	})

	app.Get("/protected", chain...)
	return app
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	app := newTestApp(NewAuthMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	app := newTestApp(NewAuthMiddleware(testSecret))

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	app := newTestApp(NewAuthMiddleware(testSecret))

	token, err := auth.GenerateToken("other-secret", "u1", "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	app := newTestApp(NewAuthMiddleware(testSecret))

	token, err := auth.GenerateToken(testSecret, "u1", "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminMiddleware_RejectsNonAdmin(t *testing.T) {
	app := newTestApp(NewAuthMiddleware(testSecret), NewAdminMiddleware())

	token, err := auth.GenerateToken(testSecret, "u1", "user", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAdminMiddleware_AllowsAdmin(t *testing.T) {
	app := newTestApp(NewAuthMiddleware(testSecret), NewAdminMiddleware())

	token, err := auth.GenerateToken(testSecret, "admin-1", "admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
