package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/service"
	"github.com/schreiber-platform/schreiber-api/internal/utils"
)

// PurchaseHandler wires purchases and the caller's enrollment views.
type PurchaseHandler struct {
	service service.PurchaseService
	logger  zerolog.Logger
}

// NewPurchaseHandler constructs the handler.
func NewPurchaseHandler(service service.PurchaseService, logger zerolog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		service: service,
		logger:  logger.With().Str("component", "purchase_handler").Logger(),
	}
}

// Register attaches purchase endpoints to the router group.
func (h *PurchaseHandler) Register(router fiber.Router) {
	router.Post("/courses", h.purchaseCourse)
	router.Post("/packages", h.purchasePackage)
}

// RegisterMe attaches the caller-scoped enrollment views.
func (h *PurchaseHandler) RegisterMe(router fiber.Router) {
	router.Get("/courses", h.ownedCourses)
	router.Get("/enrollments", h.enrollments)
}

// RegisterAdmin attaches the participant listing to the admin course group.
func (h *PurchaseHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/:courseId/participants", h.participants)
}

func (h *PurchaseHandler) purchaseCourse(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.CoursePurchaseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.service.PurchaseCourse(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course purchased", receipt)
}

func (h *PurchaseHandler) purchasePackage(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.PackagePurchaseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.service.PurchasePackage(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "package purchased", receipt)
}

func (h *PurchaseHandler) ownedCourses(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	courses, err := h.service.OwnedCourses(c.Context(), userID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "owned courses retrieved", courses)
}

func (h *PurchaseHandler) enrollments(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	enrollments, err := h.service.Enrollments(c.Context(), userID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *PurchaseHandler) participants(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	participants, err := h.service.Participants(c.Context(), courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "participants retrieved", participants)
}

func (h *PurchaseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrPackageNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "package not found")
	case errors.Is(err, service.ErrInvalidCoupon):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid or expired coupon")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *PurchaseHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
