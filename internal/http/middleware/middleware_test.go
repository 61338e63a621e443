package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioapi/internal/auth"
	"portfolioapi/internal/config"
)

func body(t *testing.T, r io.Reader) string {
	t.Helper()
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String()
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)
		assert.Equal(t, ridHeader, body(t, resp.Body))
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")
		resp, _ := app.Test(req)

		assert.Equal(t, "test-id-123", resp.Header.Get(RequestIDHeader))
		assert.Equal(t, "test-id-123", body(t, resp.Body))
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		long := strings.Repeat("x", maxRequestIDLen+1)
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, long)
		resp, _ := app.Test(req)

		got := resp.Header.Get(RequestIDHeader)
		assert.NotEqual(t, long, got)
		assert.Len(t, got, 36)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "http_request", logData["msg"])
	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])

	buf.Reset()
	_, _ = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusTeapot), logData["status"])
}

type fakeResolver map[string][]string

func (f fakeResolver) Permissions(_ context.Context, role, _ string) ([]string, error) {
	if role == "broken" {
		return nil, errors.New("role store down")
	}
	return f[role], nil
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.AuthConfig{
		JWTSecret:  "0123456789abcdef0123",
		Issuer:     "test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
}

type fakeUsers map[string]auth.Actor

func (f fakeUsers) CurrentActor(_ context.Context, userID string) (auth.Actor, error) {
	switch userID {
	case "suspended":
		return auth.Actor{}, auth.ErrInactiveAccount
	case "broken":
		return auth.Actor{}, errors.New("user store down")
	}
	a, ok := f[userID]
	if !ok {
		return auth.Actor{}, auth.ErrInvalidToken
	}
	return a, nil
}

func TestAuthenticate(t *testing.T) {
	tokens := testTokens()
	issue := func(a auth.Actor) auth.TokenPair {
		pair, err := tokens.Issue(a)
		require.NoError(t, err)
		return pair
	}
	// u1 was demoted to viewer after the token below was issued.
	users := fakeUsers{"u1": {UserID: "u1", OrgID: "org-1", Role: auth.RoleViewer}}
	pair := issue(auth.Actor{UserID: "u1", OrgID: "org-1", Role: auth.RoleManager})

	app := fiber.New()
	app.Use(Authenticate(tokens, users))
	app.Get("/me", func(c *fiber.Ctx) error {
		a, _ := auth.ActorFrom(c.UserContext())
		return c.SendString(a.UserID + "/" + a.OrgID + "/" + a.Role)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid access token", header: "Bearer " + pair.AccessToken, status: fiber.StatusOK},
		{name: "scheme is case-insensitive", header: "bearer " + pair.AccessToken, status: fiber.StatusOK},
		{name: "missing header", status: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dTE6cHc=", status: fiber.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.RefreshToken, status: fiber.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", status: fiber.StatusUnauthorized},
		{name: "suspended user", header: "Bearer " + issue(auth.Actor{UserID: "suspended", OrgID: "org-1", Role: auth.RoleAdmin}).AccessToken, status: fiber.StatusForbidden},
		{name: "deleted user", header: "Bearer " + issue(auth.Actor{UserID: "gone", OrgID: "org-1", Role: auth.RoleAdmin}).AccessToken, status: fiber.StatusUnauthorized},
		{name: "user store error", header: "Bearer " + issue(auth.Actor{UserID: "broken"}).AccessToken, status: fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, _ := app.Test(req)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == fiber.StatusOK {
				assert.Equal(t, "u1/org-1/viewer", body(t, resp.Body))
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	resolver := fakeResolver{
		auth.RoleManager: {auth.PermProjectsRead, auth.PermProjectsWrite},
		auth.RoleViewer:  {auth.PermProjectsRead},
	}
	as := func(a auth.Actor) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.SetUserContext(auth.WithActor(c.UserContext(), a))
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
	run := func(a auth.Actor, h fiber.Handler, path string) int {
		app := fiber.New()
		app.Get("/users/:id", as(a), h, ok)
		resp, _ := app.Test(httptest.NewRequest("GET", path, nil))
		return resp.StatusCode
	}

	write := RequirePermission(resolver, auth.PermProjectsWrite)
	assert.Equal(t, fiber.StatusNoContent, run(auth.Actor{UserID: "u1", OrgID: "o", Role: auth.RoleManager}, write, "/users/x"))
	assert.Equal(t, fiber.StatusForbidden, run(auth.Actor{UserID: "u1", OrgID: "o", Role: auth.RoleViewer}, write, "/users/x"))
	assert.Equal(t, fiber.StatusForbidden, run(auth.Actor{UserID: "u1", Role: auth.RoleManager}, write, "/users/x"))
	assert.Equal(t, fiber.StatusUnauthorized, run(auth.Actor{}, write, "/users/x"))
	assert.Equal(t, fiber.StatusInternalServerError, run(auth.Actor{UserID: "u1", OrgID: "o", Role: "broken"}, write, "/users/x"))

	self := SelfOrPermission(resolver, "id", auth.PermUsersManage)
	assert.Equal(t, fiber.StatusNoContent, run(auth.Actor{UserID: "u1", OrgID: "o", Role: auth.RoleViewer}, self, "/users/u1"))
	assert.Equal(t, fiber.StatusForbidden, run(auth.Actor{UserID: "u1", OrgID: "o", Role: auth.RoleViewer}, self, "/users/u2"))
}
