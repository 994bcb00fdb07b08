package handler

import (
	"github.com/gofiber/fiber/v2"

	"order-dashboard/internal/features/settings/domain"
	"order-dashboard/internal/features/settings/service"
)

// SettingsHandler handles HTTP requests for credential management.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// settingsPayload is the full credential document the endpoints exchange.
type settingsPayload struct {
	Store    domain.StoreCredentials   `json:"store"`
	Couriers domain.CourierCredentials `json:"couriers"`
	// StoreComplete reports whether the store credentials can be used.
	StoreComplete bool `json:"store_complete"`
}

// GetSettings godoc
// @Summary Read the saved credentials
// @Tags settings
// @Produce json
// @Success 200 {object} settingsPayload
// @Failure 500 {object} ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	store, err := h.settings.StoreCredentials(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	couriers, err := h.settings.CourierCredentials(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	return c.JSON(settingsPayload{
		Store:         store,
		Couriers:      couriers,
		StoreComplete: store.Complete(),
	})
}

// PutSettings godoc
// @Summary Save credentials
// @Description Replaces the saved store and courier credentials. Partial courier credentials are allowed; that courier stays disabled until complete.
// @Tags settings
// @Accept json
// @Produce json
// @Param request body settingsPayload true "Credentials to save"
// @Success 200 {object} settingsPayload
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) PutSettings(c *fiber.Ctx) error {
	var payload settingsPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "request body must be a JSON settings document",
			RayID:   rayID(c),
		})
	}

	if err := h.settings.SaveStoreCredentials(c.Context(), payload.Store); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	if err := h.settings.SaveCourierCredentials(c.Context(), payload.Couriers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	payload.StoreComplete = payload.Store.Complete()
	return c.JSON(payload)
}

// DeleteSettings godoc
// @Summary Clear all saved credentials
// @Description Wipes every persisted credential. The dashboard disconnects from the store and both couriers.
// @Tags settings
// @Success 204
// @Failure 500 {object} ErrorResponse
// @Router /settings [delete]
func (h *SettingsHandler) DeleteSettings(c *fiber.Ctx) error {
	if err := h.settings.Clear(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
