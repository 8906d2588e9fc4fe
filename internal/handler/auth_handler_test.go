package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/handler"
	"github.com/schreiber-platform/schreiber-api/internal/service"
)

type mockAuthService struct {
	registerErr error
	loginErr    error
	user        dto.UserResponse
	token       dto.TokenResponse
	profiled    uint
}

func (m *mockAuthService) Register(_ context.Context, _ dto.RegisterRequest) (dto.UserResponse, error) {
	return m.user, m.registerErr
}

func (m *mockAuthService) Login(_ context.Context, _ dto.LoginRequest) (dto.TokenResponse, error) {
	return m.token, m.loginErr
}

func (m *mockAuthService) Profile(_ context.Context, userID uint) (dto.UserResponse, error) {
	m.profiled = userID
	return m.user, nil
}

func (m *mockAuthService) UpsertAdmin(_ context.Context, _ dto.AdminUserRequest) (dto.UserResponse, error) {
	return m.user, nil
}

func authApp(svc service.AuthService, userID uint) *fiber.App {
	app := fiber.New()
	h := handler.NewAuthHandler(svc, zerolog.Nop())
	h.Register(app.Group("/api/auth"))
	h.RegisterProtected(app.Group("/api/auth", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}))
	return app
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &mockAuthService{user: dto.UserResponse{ID: 1, Email: "new@example.com"}}
	app := authApp(svc, 0)

	req := jsonRequest(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Email:     "new@example.com",
		Password:  "secret-password",
		FirstName: "New",
		LastName:  "User",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	svc := &mockAuthService{registerErr: service.ErrEmailTaken}
	app := authApp(svc, 0)

	req := jsonRequest(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Email:     "dupe@example.com",
		Password:  "secret-password",
		FirstName: "Dupe",
		LastName:  "User",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	svc := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	app := authApp(svc, 0)

	req := jsonRequest(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{
		Email:    "x@example.com",
		Password: "wrong",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandlerMe(t *testing.T) {
	svc := &mockAuthService{user: dto.UserResponse{ID: 12, Email: "me@example.com"}}
	app := authApp(svc, 12)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(12), svc.profiled)
}

func TestAuthHandlerMeUnauthenticated(t *testing.T) {
	svc := &mockAuthService{}
	app := authApp(svc, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
