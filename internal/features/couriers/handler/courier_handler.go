package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/couriers/service"
)

// StoreHistorySource supplies the store-side order history for a customer.
// Implemented by the order lifecycle service.
type StoreHistorySource interface {
	CustomerHistory(ctx context.Context, identifier string) (*domain.CustomerHistory, error)
}

// CourierHandler handles HTTP requests for courier-side customer lookups.
type CourierHandler struct {
	couriers *service.CourierService
	store    StoreHistorySource
}

// NewCourierHandler creates a new CourierHandler.
func NewCourierHandler(couriers *service.CourierService, store StoreHistorySource) *CourierHandler {
	return &CourierHandler{
		couriers: couriers,
		store:    store,
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

// CustomerHistory godoc
// @Summary Customer delivery history
// @Description Returns delivery statistics for a customer, from one courier or from the store's own orders (courier=store).
// @Tags customers
// @Produce json
// @Param phone query string true "Customer phone number (or email for courier=store)"
// @Param courier query string true "Source: steadfast, pathao or store"
// @Success 200 {object} domain.CustomerHistory
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /customers/history [get]
func (h *CourierHandler) CustomerHistory(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "phone query parameter is required",
			RayID:   rayID(c),
		})
	}

	source := c.Query("courier")
	if source == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "courier query parameter is required",
			RayID:   rayID(c),
		})
	}

	var history *domain.CustomerHistory
	var err error
	if source == "store" {
		history, err = h.store.CustomerHistory(c.Context(), phone)
	} else {
		courier, ok := domain.ParseCourier(source)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "unknown courier " + source,
				RayID:   rayID(c),
			})
		}
		history, err = h.couriers.CustomerHistory(c.Context(), courier, phone)
	}
	if err != nil {
		return c.Status(apierr.HTTPStatus(err)).JSON(ErrorResponse{
			Message: apierr.Message(err),
			RayID:   rayID(c),
		})
	}
	return c.JSON(history)
}
