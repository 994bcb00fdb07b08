package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	courierdomain "order-dashboard/internal/features/couriers/domain"
)

// TestStoreCredentials_MissingFields verifies required-field reporting.
func TestStoreCredentials_MissingFields(t *testing.T) {
	full := StoreCredentials{SiteURL: "https://shop.example", ConsumerKey: "ck", ConsumerSecret: "cs"}
	assert.Empty(t, full.MissingFields())
	assert.True(t, full.Complete())

	partial := StoreCredentials{SiteURL: "https://shop.example"}
	assert.Equal(t, []string{"consumer key", "consumer secret"}, partial.MissingFields())
	assert.False(t, partial.Complete())

	empty := StoreCredentials{}
	assert.Len(t, empty.MissingFields(), 3)
}

// TestCourierCredentials_MissingFor verifies per-courier independence.
func TestCourierCredentials_MissingFor(t *testing.T) {
	creds := CourierCredentials{
		Steadfast: SteadfastCredentials{APIKey: "key"},
		Pathao:    PathaoCredentials{AccessToken: "token", StoreID: "42"},
	}

	// Steadfast misses only its secret key.
	assert.Equal(t, []string{"Steadfast secret key"}, creds.MissingFor(courierdomain.CourierSteadfast))

	// Pathao is unaffected by Steadfast's gap.
	assert.Empty(t, creds.MissingFor(courierdomain.CourierPathao))

	assert.Equal(t, []string{"unknown courier"}, creds.MissingFor(courierdomain.Courier("dhl")))
}
