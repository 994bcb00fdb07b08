package domain

// Courier identifies one of the supported parcel-delivery services.
type Courier string

const (
	// CourierSteadfast is the Steadfast courier service.
	CourierSteadfast Courier = "steadfast"
	// CourierPathao is the Pathao courier service.
	CourierPathao Courier = "pathao"
)

// ParseCourier validates a courier name from user input.
func ParseCourier(s string) (Courier, bool) {
	switch Courier(s) {
	case CourierSteadfast, CourierPathao:
		return Courier(s), true
	}
	return "", false
}

// TrackingPrefix is the courier-specific prefix used when a booking response
// carries no tracking code and a fallback token has to be synthesized.
func (c Courier) TrackingPrefix() string {
	switch c {
	case CourierSteadfast:
		return "SF"
	case CourierPathao:
		return "PT"
	default:
		return "XX"
	}
}

// BookingResult is the tagged outcome of a booking attempt. Business
// failures (missing keys, remote rejection, bad response) are reported here,
// never as errors, so callers have a single handling path.
type BookingResult struct {
	// Success reports whether the courier accepted the parcel.
	Success bool `json:"success"`
	// TrackingID is the tracking identifier. On success this is the remote
	// tracking code when the courier supplied one, otherwise a synthesized
	// fallback token.
	TrackingID string `json:"tracking_id,omitempty"`
	// ConsignmentID is the courier's internal consignment reference, if any.
	ConsignmentID string `json:"consignment_id,omitempty"`
	// Message is the operator-facing explanation, set on failure.
	Message string `json:"message,omitempty"`
}

// CustomerHistory aggregates delivery statistics for one customer, scoped to
// a single courier or to the store itself. Derived on each request, never
// persisted.
type CustomerHistory struct {
	// Source names where the stats came from: a courier or "store".
	Source string `json:"source"`
	// TotalParcels is the total number of parcels seen for the customer.
	TotalParcels int `json:"total_parcels"`
	// Delivered is the number of successfully delivered parcels.
	Delivered int `json:"delivered"`
	// Returned is the number of returned/cancelled parcels.
	Returned int `json:"returned"`
	// Pending is the number of parcels still in flight.
	Pending int `json:"pending"`
}
