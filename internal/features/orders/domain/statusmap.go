package domain

import (
	"fmt"
	"strings"

	"order-dashboard/internal/core/apierr"
)

// The canonical status mapping between the local enumeration and the remote
// store vocabulary. Pull is total over the known remote statuses; push is
// intentionally partial, with the gaps declared rather than implied.

// pullStatus maps remote store statuses to the local enumeration.
var pullStatus = map[string]OrderStatus{
	"pending":    OrderStatusPending,
	"on-hold":    OrderStatusPending,
	"processing": OrderStatusProcessing,
	"completed":  OrderStatusDelivered,
	"cancelled":  OrderStatusCancelled,
	"refunded":   OrderStatusCancelled,
	"failed":     OrderStatusCancelled,
}

// pushStatus maps local statuses back to the remote vocabulary. Several
// local statuses collapse to the same remote value.
var pushStatus = map[OrderStatus]string{
	OrderStatusProcessing: "processing",
	OrderStatusShipped:    "completed",
	OrderStatusDelivered:  "completed",
	OrderStatusCancelled:  "cancelled",
}

// unpushable is the declared set of local statuses with no remote
// equivalent. Pending cannot be pushed: the remote "pending" means awaiting
// payment, which an operator must not reinstate.
var unpushable = map[OrderStatus]bool{
	OrderStatusPending: true,
}

// FromRemoteStatus normalizes a remote status string into the local
// enumeration. ok is false for statuses outside the mapping table; the
// caller picks the fallback.
func FromRemoteStatus(remote string) (OrderStatus, bool) {
	st, ok := pullStatus[strings.ToLower(strings.TrimSpace(remote))]
	return st, ok
}

// ToRemoteStatus maps a local status to the remote update value. A status in
// the declared unpushable set (or outside the enumeration entirely) fails
// loudly before any network call is made.
func ToRemoteStatus(status OrderStatus) (string, error) {
	if remote, ok := pushStatus[status]; ok {
		return remote, nil
	}
	if unpushable[status] {
		return "", apierr.New(apierr.KindUnmappedStatus,
			"status %q has no remote equivalent and cannot be pushed", status)
	}
	return "", apierr.New(apierr.KindUnmappedStatus, "unknown status %q", status)
}

// ValidateStatusMappings checks the mapping table for completeness at
// startup: every local status is either pushable or declared unpushable, and
// every pull alias lands on a defined local status.
func ValidateStatusMappings() error {
	for _, st := range AllStatuses {
		_, pushable := pushStatus[st]
		if !pushable && !unpushable[st] {
			return fmt.Errorf("status %q is neither pushable nor declared unpushable", st)
		}
		if pushable && unpushable[st] {
			return fmt.Errorf("status %q is both pushable and declared unpushable", st)
		}
	}

	known := make(map[OrderStatus]bool, len(AllStatuses))
	for _, st := range AllStatuses {
		known[st] = true
	}
	for remote, local := range pullStatus {
		if !known[local] {
			return fmt.Errorf("remote status %q maps to undefined local status %q", remote, local)
		}
	}
	return nil
}
