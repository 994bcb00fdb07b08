package ports

import (
	"context"

	courierdomain "order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/orders/domain"
	settingsdomain "order-dashboard/internal/features/settings/domain"
)

// CredentialSource supplies the current store connection credentials.
// Injected into the gateway so no ambient state is read.
type CredentialSource interface {
	// StoreCredentials returns the current credentials. Incomplete
	// credentials are returned as-is; the gateway decides how to fail.
	StoreCredentials(ctx context.Context) (settingsdomain.StoreCredentials, error)
}

// OrderProvider defines the interface for the remote order store.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// FetchOrders retrieves the full order list, normalized to the local model.
	FetchOrders(ctx context.Context) ([]domain.Order, error)

	// UpdateOrderStatus pushes a status change and returns the updated order.
	// A status with no remote mapping fails before any network call.
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)

	// RecordBooking writes the courier and tracking id onto the remote order
	// so the booking survives a refetch.
	RecordBooking(ctx context.Context, orderID string, courier courierdomain.Courier, trackingID string) error

	// FetchCustomerHistory aggregates the store-side order history for a
	// customer identified by phone or email.
	FetchCustomerHistory(ctx context.Context, identifier string) (*courierdomain.CustomerHistory, error)

	// HealthCheck verifies the store is reachable with the current credentials.
	HealthCheck(ctx context.Context) error
}
