package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/core/events"
	"order-dashboard/internal/core/logger"
	courierdomain "order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/orders/domain"
	"order-dashboard/internal/features/orders/ports"
)

// CourierBooker submits an order to a named courier. Implemented by the
// courier service; narrowed here so the controller does not depend on the
// whole courier feature.
type CourierBooker interface {
	Book(ctx context.Context, courier courierdomain.Courier, order domain.Order) courierdomain.BookingResult
}

// LifecycleService owns the in-memory order set and drives every order state
// transition. The remote store stays authoritative: local state is a cache
// that optimistic updates touch first and failed updates resync from scratch.
type LifecycleService struct {
	provider ports.OrderProvider
	creds    ports.CredentialSource
	booker   CourierBooker
	broker   *events.Broker
	logger   *zap.Logger

	mu       sync.Mutex
	orders   []domain.Order
	index    map[string]int
	selected string
	loading  bool
	lastErr  string
	inflight map[string]struct{}
}

// NewLifecycleService creates the controller. The broker may not be nil;
// pass a fresh one when no client will listen.
func NewLifecycleService(provider ports.OrderProvider, creds ports.CredentialSource, booker CourierBooker, broker *events.Broker) *LifecycleService {
	return &LifecycleService{
		provider: provider,
		creds:    creds,
		booker:   booker,
		broker:   broker,
		logger:   logger.Named("lifecycle"),
		index:    make(map[string]int),
		inflight: make(map[string]struct{}),
	}
}

// Snapshot is the controller's observable state, taken atomically.
type Snapshot struct {
	Orders     []domain.Order `json:"orders"`
	SelectedID string         `json:"selected_id,omitempty"`
	Loading    bool           `json:"loading"`
	LastError  string         `json:"last_error,omitempty"`
}

// Snapshot returns a copy of the current state.
func (s *LifecycleService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Orders:     append([]domain.Order(nil), s.orders...),
		SelectedID: s.selected,
		Loading:    s.loading,
		LastError:  s.lastErr,
	}
}

// Orders returns a copy of the cached order list, in fetch order.
func (s *LifecycleService) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.orders...)
}

// Order returns the cached order with the given id.
func (s *LifecycleService) Order(id string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Order{}, apierr.New(apierr.KindNotFound, "order %q is not in the current order set", id)
	}
	return s.orders[i], nil
}

// Select marks an order as the current detail-view selection.
func (s *LifecycleService) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; !ok {
		return apierr.New(apierr.KindNotFound, "order %q is not in the current order set", id)
	}
	s.selected = id
	return nil
}

// Empty reports whether the cache holds no orders yet.
func (s *LifecycleService) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders) == 0
}

// Refresh re-fetches the full order list and replaces the cache. A fetch
// failure leaves the previous set in place and records a visible error.
func (s *LifecycleService) Refresh(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	orders, err := s.provider.FetchOrders(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = apierr.Message(err)
		s.logger.Error("order refresh failed", zap.Error(err))
		return nil, err
	}

	// Carry booking fields over for orders the store has not caught up on
	// yet. A booked order stays booked across refreshes.
	for i := range orders {
		if orders[i].Booked() {
			continue
		}
		j, ok := s.index[orders[i].ID]
		if !ok || !s.orders[j].Booked() {
			continue
		}
		orders[i].Courier = s.orders[j].Courier
		orders[i].TrackingID = s.orders[j].TrackingID
		if orders[i].Status == domain.OrderStatusPending {
			orders[i].Status = domain.OrderStatusProcessing
		}
	}

	s.orders = orders
	s.index = make(map[string]int, len(orders))
	for i, o := range orders {
		s.index[o.ID] = i
	}
	if _, ok := s.index[s.selected]; !ok {
		s.selected = ""
	}
	s.lastErr = ""

	s.broker.Publish(events.Event{
		Type: "orders_refreshed",
		Data: map[string]any{"count": len(orders)},
	})
	return append([]domain.Order(nil), orders...), nil
}

// UpdateStatus pushes a status change to the remote store, applying it
// locally first. A failed push surfaces the error and resyncs the whole set
// from the store rather than patching the one order back.
func (s *LifecycleService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	creds, err := s.creds.StoreCredentials(ctx)
	if err != nil {
		return domain.Order{}, apierr.Wrap(apierr.KindConfiguration, err, "could not read the store credentials")
	}
	if !creds.Complete() {
		return domain.Order{}, apierr.New(apierr.KindConfiguration,
			"store credentials are not configured; save them before updating orders")
	}

	// An unpushable status can never reach the store; fail before touching
	// local state so no rollback refetch is needed.
	if _, err := domain.ToRemoteStatus(status); err != nil {
		return domain.Order{}, err
	}

	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return domain.Order{}, apierr.New(apierr.KindNotFound, "order %q is not in the current order set", id)
	}
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return domain.Order{}, apierr.New(apierr.KindConflict,
			"an update for order %q is already in flight", id)
	}
	s.inflight[id] = struct{}{}
	previous := s.orders[i].Status
	s.orders[i].Status = status
	s.mu.Unlock()

	updated, err := s.provider.UpdateOrderStatus(ctx, id, status)

	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("status update rejected, resyncing from store",
			zap.String("order_id", id),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
			zap.Error(err),
		)
		// Rollback by refetch: the store is authoritative, so a full resync
		// beats guessing at the single order's true state. The update error
		// stays visible after the resync.
		if _, rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Error("rollback refetch failed", zap.Error(rerr))
		}
		s.mu.Lock()
		s.lastErr = "update failed: " + apierr.Message(err)
		s.mu.Unlock()
		return domain.Order{}, err
	}

	s.mu.Lock()
	if i, ok := s.index[id]; ok {
		s.orders[i].Status = updated.Status
	}
	s.lastErr = ""
	result := *updated
	s.mu.Unlock()

	s.broker.Publish(events.Event{
		Type: "status_changed",
		Data: map[string]any{"order_id": id, "status": string(updated.Status)},
	})
	return result, nil
}

// Book hands an order to a courier. Booking is one-way: a booked order keeps
// its courier and tracking id forever. On success a Pending order advances to
// Processing locally; the store is not called for that advance.
func (s *LifecycleService) Book(ctx context.Context, id string, courier courierdomain.Courier) (domain.Order, courierdomain.BookingResult, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return domain.Order{}, courierdomain.BookingResult{}, apierr.New(apierr.KindNotFound,
			"order %q is not in the current order set", id)
	}
	order := s.orders[i]
	if order.Booked() {
		s.mu.Unlock()
		return domain.Order{}, courierdomain.BookingResult{}, apierr.New(apierr.KindConflict,
			"order %q is already booked with %s (tracking %s)", id, order.Courier, order.TrackingID)
	}
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return domain.Order{}, courierdomain.BookingResult{}, apierr.New(apierr.KindConflict,
			"an update for order %q is already in flight", id)
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()

	result := s.booker.Book(ctx, courier, order)

	s.mu.Lock()
	delete(s.inflight, id)
	if !result.Success {
		s.mu.Unlock()
		s.logger.Warn("booking failed",
			zap.String("order_id", id),
			zap.String("courier", string(courier)),
			zap.String("message", result.Message),
		)
		return order, result, nil
	}

	i, ok = s.index[id]
	if ok {
		s.orders[i].Courier = courier
		s.orders[i].TrackingID = result.TrackingID
		if s.orders[i].Status == domain.OrderStatusPending {
			s.orders[i].Status = domain.OrderStatusProcessing
		}
		order = s.orders[i]
	}
	s.mu.Unlock()

	// Persist the assignment so the booking survives a refetch. The local
	// merge in Refresh bridges the gap if this write fails.
	if err := s.provider.RecordBooking(ctx, id, courier, result.TrackingID); err != nil {
		s.logger.Warn("could not record the booking on the store",
			zap.String("order_id", id),
			zap.Error(err),
		)
	}

	s.logger.Info("order booked",
		zap.String("order_id", id),
		zap.String("courier", string(courier)),
		zap.String("tracking_id", result.TrackingID),
	)
	s.broker.Publish(events.Event{
		Type: "order_booked",
		Data: map[string]any{
			"order_id":    id,
			"courier":     string(courier),
			"tracking_id": result.TrackingID,
			"status":      string(order.Status),
		},
	})
	return order, result, nil
}

// CustomerHistory aggregates the store-side history for the given identifier.
func (s *LifecycleService) CustomerHistory(ctx context.Context, identifier string) (*courierdomain.CustomerHistory, error) {
	return s.provider.FetchCustomerHistory(ctx, identifier)
}
