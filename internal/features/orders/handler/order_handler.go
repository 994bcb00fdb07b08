package handler

import (
	"github.com/gofiber/fiber/v2"

	"order-dashboard/internal/core/apierr"
	courierdomain "order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/orders/domain"
	"order-dashboard/internal/features/orders/service"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	lifecycle *service.LifecycleService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(lifecycle *service.LifecycleService) *OrderHandler {
	return &OrderHandler{
		lifecycle: lifecycle,
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

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(apierr.HTTPStatus(err)).JSON(ErrorResponse{
		Message: apierr.Message(err),
		RayID:   rayID(c),
	})
}

// updateStatusRequest is the PATCH /orders/{id}/status payload.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// bookRequest is the POST /orders/{id}/book payload.
type bookRequest struct {
	Courier string `json:"courier"`
}

// bookResponse pairs the booking outcome with the resulting order state.
type bookResponse struct {
	Order   domain.Order                `json:"order"`
	Booking courierdomain.BookingResult `json:"booking"`
}

// ListOrders godoc
// @Summary List orders
// @Description Returns the current order set. Fetches from the store when the set is empty or refresh=true.
// @Tags orders
// @Produce json
// @Param refresh query bool false "Force a re-fetch from the store"
// @Success 200 {object} service.Snapshot
// @Failure 502 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	if h.lifecycle.Empty() || c.QueryBool("refresh") {
		if _, err := h.lifecycle.Refresh(c.Context()); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(h.lifecycle.Snapshot())
}

// GetOrder godoc
// @Summary Get one order
// @Description Returns a single order from the current set and marks it selected.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.lifecycle.Select(id); err != nil {
		return respondError(c, err)
	}
	order, err := h.lifecycle.Order(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// UpdateStatus godoc
// @Summary Update an order's status
// @Description Pushes a status change to the store. The local set updates optimistically and resyncs on failure.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body updateStatusRequest true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "request body must be JSON with a status field",
			RayID:   rayID(c),
		})
	}

	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "unknown status " + req.Status,
			RayID:   rayID(c),
		})
	}

	order, err := h.lifecycle.UpdateStatus(c.Context(), c.Params("id"), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// BookOrder godoc
// @Summary Book an order with a courier
// @Description Hands the order to a courier. Booking failures come back in the booking field, not as an HTTP error.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body bookRequest true "Courier to book with"
// @Success 200 {object} bookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/book [post]
func (h *OrderHandler) BookOrder(c *fiber.Ctx) error {
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "request body must be JSON with a courier field",
			RayID:   rayID(c),
		})
	}

	courier, ok := courierdomain.ParseCourier(req.Courier)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "unknown courier " + req.Courier,
			RayID:   rayID(c),
		})
	}

	order, result, err := h.lifecycle.Book(c.Context(), c.Params("id"), courier)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookResponse{Order: order, Booking: result})
}
