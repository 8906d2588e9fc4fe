package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/service"
	"github.com/schreiber-platform/schreiber-api/internal/utils"
)

// GrammarHandler proxies grammar checks to the upstream service.
type GrammarHandler struct {
	service service.GrammarService
	logger  zerolog.Logger
}

// NewGrammarHandler constructs the handler.
func NewGrammarHandler(service service.GrammarService, logger zerolog.Logger) *GrammarHandler {
	return &GrammarHandler{
		service: service,
		logger:  logger.With().Str("component", "grammar_handler").Logger(),
	}
}

// Register attaches the grammar endpoint to the router group.
func (h *GrammarHandler) Register(router fiber.Router) {
	router.Post("/check", h.check)
}

func (h *GrammarHandler) check(c *fiber.Ctx) error {
	var payload dto.GrammarCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(payload.Text) == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "text is required")
	}

	result, err := h.service.Check(c.Context(), payload)
	if err != nil {
		if errors.Is(err, service.ErrGrammarUpstream) {
			h.logger.Error().Err(err).Msg("grammar upstream failure")
			return utils.SendError(c, fiber.StatusBadGateway, "grammar service unavailable")
		}
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(result)
}
