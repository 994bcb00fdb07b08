package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-dashboard/internal/core/kv"
	"order-dashboard/internal/features/settings/service"
)

func newTestApp() *fiber.App {
	h := NewSettingsHandler(service.NewSettingsService(kv.NewMemoryStore()))

	app := fiber.New()
	app.Get("/settings", h.GetSettings)
	app.Put("/settings", h.PutSettings)
	app.Delete("/settings", h.DeleteSettings)
	return app
}

// TestSettingsHandler_RoundTrip verifies save then read.
func TestSettingsHandler_RoundTrip(t *testing.T) {
	app := newTestApp()

	payload := `{
		"store": {"site_url": "https://shop.example.com", "consumer_key": "ck_1", "consumer_secret": "cs_1"},
		"couriers": {"steadfast": {"api_key": "sf_k", "secret_key": "sf_s"}, "pathao": {"access_token": "pt_t", "store_id": "42"}}
	}`
	req := httptest.NewRequest("PUT", "/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/settings", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "https://shop.example.com", got.Store.SiteURL)
	assert.Equal(t, "sf_k", got.Couriers.Steadfast.APIKey)
	assert.Equal(t, "42", got.Couriers.Pathao.StoreID)
	assert.True(t, got.StoreComplete)
}

// TestSettingsHandler_Get_Empty verifies absent credentials read as zero
// values, not an error.
func TestSettingsHandler_Get_Empty(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/settings", nil), 2000)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Empty(t, got.Store.SiteURL)
	assert.False(t, got.StoreComplete)
}

// TestSettingsHandler_PartialCourierCredentials verifies partial keys are
// accepted and stored as-is.
func TestSettingsHandler_PartialCourierCredentials(t *testing.T) {
	app := newTestApp()

	payload := `{"couriers": {"steadfast": {"api_key": "sf_k"}}}`
	req := httptest.NewRequest("PUT", "/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/settings", nil), 2000)
	require.NoError(t, err)

	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "sf_k", got.Couriers.Steadfast.APIKey)
	assert.Empty(t, got.Couriers.Steadfast.SecretKey)
	assert.False(t, got.StoreComplete)
}

// TestSettingsHandler_Delete verifies the logout wipe.
func TestSettingsHandler_Delete(t *testing.T) {
	app := newTestApp()

	payload := `{"store": {"site_url": "https://shop.example.com", "consumer_key": "ck", "consumer_secret": "cs"}}`
	req := httptest.NewRequest("PUT", "/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req, 2000)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/settings", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/settings", nil), 2000)
	require.NoError(t, err)

	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Empty(t, got.Store.SiteURL)
	assert.Empty(t, got.Couriers.Steadfast.APIKey)
}
