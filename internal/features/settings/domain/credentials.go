package domain

import courierdomain "order-dashboard/internal/features/couriers/domain"

// StoreCredentials connects the dashboard to the remote WooCommerce store.
type StoreCredentials struct {
	// SiteURL is the base URL of the store.
	SiteURL string `json:"site_url"`
	// ConsumerKey is the public API key.
	ConsumerKey string `json:"consumer_key"`
	// ConsumerSecret is the secret API key.
	ConsumerSecret string `json:"consumer_secret"`
}

// MissingFields lists the required fields that are empty.
func (c StoreCredentials) MissingFields() []string {
	var missing []string
	if c.SiteURL == "" {
		missing = append(missing, "site URL")
	}
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	return missing
}

// Complete reports whether every required field is present.
func (c StoreCredentials) Complete() bool {
	return len(c.MissingFields()) == 0
}

// SteadfastCredentials is the key material for the Steadfast API.
type SteadfastCredentials struct {
	// APIKey is the Steadfast API key.
	APIKey string `json:"api_key"`
	// SecretKey is the Steadfast secret key.
	SecretKey string `json:"secret_key"`
}

// MissingFields lists the required fields that are empty.
func (c SteadfastCredentials) MissingFields() []string {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "Steadfast API key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "Steadfast secret key")
	}
	return missing
}

// PathaoCredentials is the key material for the Pathao API.
type PathaoCredentials struct {
	// AccessToken is the merchant access token.
	AccessToken string `json:"access_token"`
	// StoreID is the Pathao store identifier.
	StoreID string `json:"store_id"`
}

// MissingFields lists the required fields that are empty.
func (c PathaoCredentials) MissingFields() []string {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, "Pathao access token")
	}
	if c.StoreID == "" {
		missing = append(missing, "Pathao store ID")
	}
	return missing
}

// CourierCredentials bundles the per-courier key material. Absence of one
// courier's keys disables that courier only; the other keeps working.
type CourierCredentials struct {
	// Steadfast holds the Steadfast key material.
	Steadfast SteadfastCredentials `json:"steadfast"`
	// Pathao holds the Pathao key material.
	Pathao PathaoCredentials `json:"pathao"`
}

// MissingFor lists the missing required fields for the given courier.
func (c CourierCredentials) MissingFor(courier courierdomain.Courier) []string {
	switch courier {
	case courierdomain.CourierSteadfast:
		return c.Steadfast.MissingFields()
	case courierdomain.CourierPathao:
		return c.Pathao.MissingFields()
	default:
		return []string{"unknown courier"}
	}
}
