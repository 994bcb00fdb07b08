package ports

import (
	"context"

	"order-dashboard/internal/features/couriers/domain"
	ordersdomain "order-dashboard/internal/features/orders/domain"
	settingsdomain "order-dashboard/internal/features/settings/domain"
)

// CredentialSource supplies the current courier key material. Injected into
// the adapters so no ambient state is read.
type CredentialSource interface {
	// CourierCredentials returns the current per-courier keys. Missing keys
	// are returned as-is; the adapters decide how to fail.
	CourierCredentials(ctx context.Context) (settingsdomain.CourierCredentials, error)
}

// CourierProvider defines the interface a courier backend implements.
type CourierProvider interface {
	// Courier identifies which courier this provider speaks to.
	Courier() domain.Courier

	// Book submits the order for delivery. Business failures (missing keys,
	// remote rejection, unusable response) are reported in the result, never
	// as a panic or error escaping this boundary.
	Book(ctx context.Context, order ordersdomain.Order) domain.BookingResult

	// CustomerHistory fetches the courier-side delivery statistics for a
	// customer phone number. Missing keys yield a configuration error,
	// distinct from remote-service failures.
	CustomerHistory(ctx context.Context, phone string) (*domain.CustomerHistory, error)
}
