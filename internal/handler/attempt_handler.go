package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/service"
	"github.com/schreiber-platform/schreiber-api/internal/utils"
)

// AttemptHandler wires the writing-attempt endpoints: watched flags,
// scored submissions and result reads.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler constructs the handler.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches the attempt endpoints to the router group.
func (h *AttemptHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.submit)
	router.Post("/watched", h.watched)
	router.Get("/:courseId/:round", h.get)
}

// RegisterCourseResults attaches the per-course results view. The group is
// expected to carry a :courseId parameter.
func (h *AttemptHandler) RegisterCourseResults(router fiber.Router) {
	router.Get("/:courseId/results", h.courseResults)
}

func (h *AttemptHandler) watched(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.WatchedRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RecordWatched(c.Context(), userID, payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "module marked as watched", fiber.Map{
		"courseId": payload.CourseID,
		"round":    payload.Round,
	})
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AttemptSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", result)
}

func (h *AttemptHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	results, err := h.service.ListByUser(c.Context(), userID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *AttemptHandler) get(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	round, err := strconv.Atoi(c.Params("round"))
	if err != nil || round < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid round")
	}

	result, err := h.service.Get(c.Context(), userID, courseID, round)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *AttemptHandler) courseResults(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	aggregate := c.QueryBool("aggregate")

	results, err := h.service.CourseResults(c.Context(), userID, courseID, aggregate)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "course results retrieved", results)
}

func (h *AttemptHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrResultNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "result not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AttemptHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
