package handler

import (
	"errors"

	"packtrack/internal/features/urls/service"

	"github.com/gofiber/fiber/v2"
)

// URLHandler handles HTTP requests for the tracked URL list.
type URLHandler struct {
	urlService *service.URLService
}

// NewURLHandler creates a new URLHandler.
func NewURLHandler(urlService *service.URLService) *URLHandler {
	return &URLHandler{
		urlService: urlService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// addRequest is the body of a URL registration.
type addRequest struct {
	URL string `json:"url"`
}

// List returns every tracked URL.
func (h *URLHandler) List(c *fiber.Ctx) error {
	urls, err := h.urlService.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(fiber.Map{"urls": urls})
}

// Add registers a new tracked URL.
func (h *URLHandler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	if err := h.urlService.Add(req.URL); err != nil {
		if errors.Is(err, service.ErrEmptyURL) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": req.URL})
}

// Remove deletes every tracked URL containing the pattern query parameter.
func (h *URLHandler) Remove(c *fiber.Ctx) error {
	pattern := c.Query("pattern")

	removed, err := h.urlService.Remove(c.UserContext(), pattern)
	if err != nil {
		if errors.Is(err, service.ErrEmptyPattern) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "pattern query parameter is required",
				RayID:   c.Locals("requestid").(string),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	return c.JSON(fiber.Map{"removed": removed})
}
