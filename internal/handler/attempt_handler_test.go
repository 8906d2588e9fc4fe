package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/handler"
	"github.com/schreiber-platform/schreiber-api/internal/service"
)

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type mockAttemptService struct {
	watched     []dto.WatchedRequest
	lastUserID  uint
	submitted   dto.ModuleResultResponse
	watchedErr  error
	submitErr   error
	getErr      error
	courseCalls []bool
}

func (m *mockAttemptService) RecordWatched(_ context.Context, userID uint, payload dto.WatchedRequest) error {
	m.lastUserID = userID
	m.watched = append(m.watched, payload)
	return m.watchedErr
}

func (m *mockAttemptService) Submit(_ context.Context, userID uint, _ dto.AttemptSubmitRequest) (dto.ModuleResultResponse, error) {
	m.lastUserID = userID
	return m.submitted, m.submitErr
}

func (m *mockAttemptService) Get(_ context.Context, userID, _ uint, _ int) (dto.ModuleResultResponse, error) {
	m.lastUserID = userID
	return m.submitted, m.getErr
}

func (m *mockAttemptService) ListByUser(_ context.Context, userID uint) ([]dto.ModuleResultResponse, error) {
	m.lastUserID = userID
	return []dto.ModuleResultResponse{m.submitted}, nil
}

func (m *mockAttemptService) CourseResults(_ context.Context, userID, _ uint, aggregate bool) ([]dto.ModuleResultResponse, error) {
	m.lastUserID = userID
	m.courseCalls = append(m.courseCalls, aggregate)
	return []dto.ModuleResultResponse{m.submitted}, nil
}

func attemptApp(svc service.AttemptService, userID uint) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/attempts", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	h := handler.NewAttemptHandler(svc, zerolog.Nop())
	h.Register(group)

	courses := app.Group("/api/courses", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	h.RegisterCourseResults(courses)
	return app
}

func TestAttemptHandlerWatched(t *testing.T) {
	svc := &mockAttemptService{}
	app := attemptApp(svc, 7)

	req := jsonRequest(t, http.MethodPost, "/api/attempts/watched", dto.WatchedRequest{
		Watched:  true,
		Round:    1,
		CourseID: 3,
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(7), svc.lastUserID)
	require.Len(t, svc.watched, 1)
	require.True(t, svc.watched[0].Watched)
}

func TestAttemptHandlerWatchedValidationFailure(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := &mockAttemptService{watchedErr: validate.Struct(dto.WatchedRequest{})}
	app := attemptApp(svc, 7)

	req := jsonRequest(t, http.MethodPost, "/api/attempts/watched", map[string]interface{}{"watched": false})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttemptHandlerRequiresUser(t *testing.T) {
	svc := &mockAttemptService{}
	app := attemptApp(svc, 0)

	req := jsonRequest(t, http.MethodPost, "/api/attempts/watched", dto.WatchedRequest{Watched: true, CourseID: 3})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAttemptHandlerGetNotFound(t *testing.T) {
	svc := &mockAttemptService{getErr: service.ErrResultNotFound}
	app := attemptApp(svc, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/attempts/3/0", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAttemptHandlerGetInvalidRound(t *testing.T) {
	svc := &mockAttemptService{}
	app := attemptApp(svc, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/attempts/3/abc", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAttemptHandlerCourseResultsAggregateFlag(t *testing.T) {
	svc := &mockAttemptService{submitted: dto.ModuleResultResponse{ID: 5}}
	app := attemptApp(svc, 7)

	req := httptest.NewRequest(http.MethodGet, "/api/courses/3/results?aggregate=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/courses/3/results", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, []bool{true, false}, svc.courseCalls)

	var response struct {
		Success bool                       `json:"success"`
		Data    []dto.ModuleResultResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data, 1)
	require.Equal(t, uint(5), response.Data[0].ID)
}
