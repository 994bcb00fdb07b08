package domain

import (
	"time"

	"github.com/shopspring/decimal"

	courierdomain "order-dashboard/internal/features/couriers/domain"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order is placed but not yet worked on.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusProcessing indicates the order is being prepared.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped indicates the order has been handed to a courier.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled indicates the order was cancelled, refunded or failed.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// AllStatuses lists every local status, in lifecycle order.
var AllStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseStatus validates a status string from user input.
func ParseStatus(s string) (OrderStatus, bool) {
	for _, st := range AllStatuses {
		if OrderStatus(s) == st {
			return st, true
		}
	}
	return "", false
}

// Order represents one purchase transaction. The remote store owns the data;
// this is a local cache keyed by the remote id.
type Order struct {
	// ID is the stable identifier assigned by the remote store.
	ID string `json:"order_id"`
	// Status is the local order state.
	Status OrderStatus `json:"status"`
	// CustomerName is the customer's full name.
	CustomerName string `json:"customer_name"`
	// Email is the customer's contact email.
	Email string `json:"email"`
	// Phone is the customer's contact phone.
	Phone string `json:"phone"`
	// ShippingAddress is the free-text delivery address.
	ShippingAddress string `json:"shipping_address"`
	// Total is the order's monetary total.
	Total decimal.Decimal `json:"total"`
	// Courier is set once the order has been booked for delivery.
	Courier courierdomain.Courier `json:"courier,omitempty"`
	// TrackingID is the courier tracking identifier, set on booking.
	TrackingID string `json:"tracking_id,omitempty"`
	// CreatedAt is the timestamp when the order was placed.
	CreatedAt time.Time `json:"create_date"`
	// Items contains the ordered line items. Immutable once fetched.
	Items []OrderItem `json:"items"`
}

// Booked reports whether the order has already been handed to a courier.
// Booking is one-way: a booked order never changes courier.
func (o *Order) Booked() bool {
	return o.Courier != ""
}

// OrderItem represents an individual line item within an order.
type OrderItem struct {
	// ID is the line item identifier.
	ID string `json:"id"`
	// Name is the product name.
	Name string `json:"name"`
	// Quantity is the number of units ordered.
	Quantity int `json:"quantity"`
	// UnitPrice is the per-unit price.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// ImageURL is an optional product image reference.
	ImageURL string `json:"image_url,omitempty"`
}
