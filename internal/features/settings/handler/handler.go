package handler

import (
	"errors"

	"packtrack/internal/features/settings/service"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler handles HTTP requests for the user settings.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// Get returns the effective settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settingsService.Get(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.JSON(settings)
}

// Update applies a partial settings update and returns the result.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req service.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   c.Locals("requestid").(string),
		})
	}

	settings, err := h.settingsService.Update(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCacheSeconds) {
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
	return c.JSON(settings)
}

// Reset removes the stored settings, restoring the defaults.
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	if err := h.settingsService.Reset(c.UserContext()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
