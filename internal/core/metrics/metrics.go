package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the dashboard.
	Registry = prometheus.NewRegistry()

	// OrderFetches counts full order-list fetches by outcome.
	OrderFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_fetches_total", Help: "Order list fetches by outcome."},
		[]string{"outcome"},
	)
	// StatusUpdates counts remote status updates by target status and outcome.
	StatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_status_updates_total", Help: "Order status updates by status and outcome."},
		[]string{"status", "outcome"},
	)
	// Bookings counts courier booking attempts by courier and outcome.
	Bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "courier_bookings_total", Help: "Courier bookings by courier and outcome."},
		[]string{"courier", "outcome"},
	)
	// GatewayErrors counts classified gateway failures by error kind.
	GatewayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_errors_total", Help: "Classified gateway errors by kind."},
		[]string{"gateway", "kind"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the dashboard collectors plus Go/process
// collectors on the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(OrderFetches)
		Registry.MustRegister(StatusUpdates)
		Registry.MustRegister(Bookings)
		Registry.MustRegister(GatewayErrors)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
