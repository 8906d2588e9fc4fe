package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/service"
	"github.com/schreiber-platform/schreiber-api/internal/utils"
)

// MediaHandler wires the media library endpoints: the folder tree, video
// listings and file uploads.
type MediaHandler struct {
	service service.MediaService
	logger  zerolog.Logger
}

// NewMediaHandler constructs the handler.
func NewMediaHandler(service service.MediaService, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		service: service,
		logger:  logger.With().Str("component", "media_handler").Logger(),
	}
}

// Register attaches media endpoints to the router group.
func (h *MediaHandler) Register(router fiber.Router) {
	router.Get("/folders", h.folders)
	router.Get("/videos", h.videos)
	router.Post("/upload", h.upload)
}

func (h *MediaHandler) folders(c *fiber.Ctx) error {
	tree, err := h.service.FolderTree(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "folder tree retrieved", tree)
}

func (h *MediaHandler) videos(c *fiber.Ctx) error {
	module := c.Query("module")

	videos, err := h.service.ListVideos(c.Context(), module)
	if err != nil {
		if errors.Is(err, service.ErrMissingModule) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "videos retrieved", videos)
}

func (h *MediaHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	result, err := h.service.Upload(c.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedMediaType) {
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "file uploaded", result)
}

func (h *MediaHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
