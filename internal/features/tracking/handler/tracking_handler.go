package handler

import (
	"strings"
	"time"

	settingssvc "packtrack/internal/features/settings/service"
	"packtrack/internal/features/tracking/service"
	urlsvc "packtrack/internal/features/urls/service"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for tracking runs.
type TrackingHandler struct {
	trackingService *service.TrackingService
	urlService      *urlsvc.URLService
	settingsService *settingssvc.SettingsService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService, urlService *urlsvc.URLService, settingsService *settingssvc.SettingsService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		urlService:      urlService,
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

// GetReport tracks the registered URLs and returns the classified report.
//
// Query parameters: max_age (seconds), no_cache, language, postcode,
// carrier, sender, recipient, and url. The url parameter narrows the run to
// registered URLs containing the value; a value matching nothing is tracked
// as a one-off URL through the same pipeline.
func (h *TrackingHandler) GetReport(c *fiber.Ctx) error {
	settings, err := h.settingsService.Get(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}

	maxAge := c.QueryInt("max_age", settings.CacheSeconds)
	if maxAge < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "max_age must not be negative",
			RayID:   c.Locals("requestid").(string),
		})
	}

	opts := service.TrackOptions{
		NoCache:  c.QueryBool("no_cache", false),
		MaxAge:   time.Duration(maxAge) * time.Second,
		Language: c.Query("language", settings.Language),
		Postcode: c.Query("postcode", settings.Postcode),
	}
	filters := service.Filters{
		Carrier:   c.Query("carrier"),
		Sender:    c.Query("sender"),
		Recipient: c.Query("recipient"),
	}

	urls, err := h.urlService.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   c.Locals("requestid").(string),
		})
	}
	urls = narrowURLs(urls, c.Query("url"))

	outcomes := h.trackingService.TrackAll(c.UserContext(), urls, opts)
	report := service.ClassifyAndFilter(outcomes, filters)

	return c.JSON(report)
}

// narrowURLs applies the url query parameter: a fragment of registered URLs
// selects those; anything else is treated as an ad hoc URL to track.
func narrowURLs(urls []string, query string) []string {
	if query == "" {
		return urls
	}
	matched := []string{}
	for _, url := range urls {
		if strings.Contains(url, query) {
			matched = append(matched, url)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return []string{query}
}
