package service

import (
	"context"
	"fmt"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/couriers/ports"
	ordersdomain "order-dashboard/internal/features/orders/domain"
)

// CourierService dispatches booking and history requests to the provider
// that speaks the requested courier's API.
type CourierService struct {
	providers []ports.CourierProvider
}

// NewCourierService creates a CourierService with the given providers.
func NewCourierService(providers []ports.CourierProvider) *CourierService {
	return &CourierService{
		providers: providers,
	}
}

// Book routes a booking request to the matching provider. An unknown courier
// comes back as a failure result, same as any other booking failure.
func (s *CourierService) Book(ctx context.Context, courier domain.Courier, order ordersdomain.Order) domain.BookingResult {
	for _, provider := range s.providers {
		if provider.Courier() == courier {
			return provider.Book(ctx, order)
		}
	}
	return domain.BookingResult{
		Success: false,
		Message: fmt.Sprintf("courier %q is not supported", courier),
	}
}

// CustomerHistory routes a history lookup to the matching provider.
func (s *CourierService) CustomerHistory(ctx context.Context, courier domain.Courier, phone string) (*domain.CustomerHistory, error) {
	for _, provider := range s.providers {
		if provider.Courier() == courier {
			return provider.CustomerHistory(ctx, phone)
		}
	}
	return nil, apierr.New(apierr.KindNotFound, "courier %q is not supported", courier)
}
