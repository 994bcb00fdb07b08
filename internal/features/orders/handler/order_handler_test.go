package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/core/events"
	courierdomain "order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/orders/domain"
	"order-dashboard/internal/features/orders/service"
	settingsdomain "order-dashboard/internal/features/settings/domain"
)

// fakeProvider is an in-memory OrderProvider double.
type fakeProvider struct {
	orders   []domain.Order
	fetchErr error
}

func (f *fakeProvider) FetchOrders(context.Context) ([]domain.Order, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeProvider) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == orderID {
			o.Status = status
			return &o, nil
		}
	}
	return nil, apierr.New(apierr.KindNotFound, "no order %s", orderID)
}

func (f *fakeProvider) RecordBooking(_ context.Context, orderID string, courier courierdomain.Courier, trackingID string) error {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			f.orders[i].Courier = courier
			f.orders[i].TrackingID = trackingID
		}
	}
	return nil
}

func (f *fakeProvider) FetchCustomerHistory(context.Context, string) (*courierdomain.CustomerHistory, error) {
	return &courierdomain.CustomerHistory{Source: "store"}, nil
}

func (f *fakeProvider) HealthCheck(context.Context) error { return nil }

type fakeCreds struct{}

func (fakeCreds) StoreCredentials(context.Context) (settingsdomain.StoreCredentials, error) {
	return settingsdomain.StoreCredentials{
		SiteURL:        "https://shop.example.com",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
	}, nil
}

type fakeBooker struct {
	result courierdomain.BookingResult
}

func (f *fakeBooker) Book(context.Context, courierdomain.Courier, domain.Order) courierdomain.BookingResult {
	return f.result
}

func newTestApp(provider *fakeProvider, booker *fakeBooker) *fiber.App {
	if booker == nil {
		booker = &fakeBooker{}
	}
	lifecycle := service.NewLifecycleService(provider, fakeCreds{}, booker, events.NewBroker())
	h := NewOrderHandler(lifecycle)

	app := fiber.New()
	app.Get("/orders", h.ListOrders)
	app.Get("/orders/:id", h.GetOrder)
	app.Patch("/orders/:id/status", h.UpdateStatus)
	app.Post("/orders/:id/book", h.BookOrder)
	return app
}

func sampleOrders() []domain.Order {
	return []domain.Order{
		{ID: "1001", Status: domain.OrderStatusPending, CustomerName: "John Doe"},
		{ID: "1002", Status: domain.OrderStatusProcessing, CustomerName: "Jane Roe"},
	}
}

// TestOrderHandler_ListOrders verifies the lazy first fetch.
func TestOrderHandler_ListOrders(t *testing.T) {
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snap service.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Len(t, snap.Orders, 2)
	assert.Empty(t, snap.LastError)
}

// TestOrderHandler_ListOrders_FetchError verifies the gateway status mapping.
func TestOrderHandler_ListOrders_FetchError(t *testing.T) {
	provider := &fakeProvider{fetchErr: apierr.New(apierr.KindTransport, "could not reach the store")}
	app := newTestApp(provider, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Message, "could not reach the store")
}

// TestOrderHandler_GetOrder_NotFound verifies the 404 path.
func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, nil)

	// Populate the set first.
	_, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/9999", nil), 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// TestOrderHandler_UpdateStatus verifies the happy path.
func TestOrderHandler_UpdateStatus(t *testing.T) {
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, nil)
	_, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/orders/1001/status", strings.NewReader(`{"status":"Processing"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
}

// TestOrderHandler_UpdateStatus_UnknownStatus verifies input validation.
func TestOrderHandler_UpdateStatus_UnknownStatus(t *testing.T) {
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, nil)
	_, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)
	require.NoError(t, err)

	req := httptest.NewRequest("PATCH", "/orders/1001/status", strings.NewReader(`{"status":"Teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// TestOrderHandler_BookOrder verifies the booking envelope.
func TestOrderHandler_BookOrder(t *testing.T) {
	booker := &fakeBooker{result: courierdomain.BookingResult{Success: true, TrackingID: "15BAEB8A"}}
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, booker)
	_, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/orders/1001/book", strings.NewReader(`{"courier":"steadfast"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body bookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Booking.Success)
	assert.Equal(t, "15BAEB8A", body.Order.TrackingID)
	assert.Equal(t, domain.OrderStatusProcessing, body.Order.Status)
}

// TestOrderHandler_BookOrder_UnknownCourier verifies input validation.
func TestOrderHandler_BookOrder_UnknownCourier(t *testing.T) {
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, nil)
	_, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/orders/1001/book", strings.NewReader(`{"courier":"carrier-pigeon"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// TestOrderHandler_BookOrder_AlreadyBooked verifies the conflict status.
func TestOrderHandler_BookOrder_AlreadyBooked(t *testing.T) {
	booker := &fakeBooker{result: courierdomain.BookingResult{Success: true, TrackingID: "DL1"}}
	app := newTestApp(&fakeProvider{orders: sampleOrders()}, booker)
	_, err := app.Test(httptest.NewRequest("GET", "/orders", nil), 2000)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/orders/1001/book", strings.NewReader(`{"courier":"pathao"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = app.Test(req, 2000)
	require.NoError(t, err)

	req = httptest.NewRequest("POST", "/orders/1001/book", strings.NewReader(`{"courier":"steadfast"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
