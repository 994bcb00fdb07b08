package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/features/couriers/domain"
	settingsdomain "order-dashboard/internal/features/settings/domain"
)

func pathaoCreds() *staticCourierCredentials {
	return &staticCourierCredentials{creds: settingsdomain.CourierCredentials{
		Pathao: settingsdomain.PathaoCredentials{AccessToken: "pt_token", StoreID: "42"},
	}}
}

// TestPathaoAdapter_Book_Success verifies a booking with a remote consignment id.
func TestPathaoAdapter_Book_Success(t *testing.T) {
	var sentBody pathaoBookingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/aladdin/api/v1/orders", r.URL.Path)
		assert.Equal(t, "Bearer pt_token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sentBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"message": "Order Created Successfully",
			"type": "success",
			"code": 200,
			"data": {"consignment_id": "DL123456789", "order_status": "Pending"}
		}`))
	}))
	defer server.Close()

	adapter := NewPathaoAdapter(server.URL, pathaoCreds(), 60)
	result := adapter.Book(context.Background(), testOrder())

	require.True(t, result.Success, result.Message)
	assert.Equal(t, "DL123456789", result.TrackingID)
	assert.Equal(t, "DL123456789", result.ConsignmentID)

	assert.Equal(t, "42", sentBody.StoreID)
	assert.Equal(t, "ORD-1", sentBody.MerchantOrderID)
	assert.Equal(t, pathaoDeliveryTypeNormal, sentBody.DeliveryType)
	assert.Equal(t, pathaoItemTypeParcel, sentBody.ItemType)
	assert.Equal(t, 2, sentBody.ItemQuantity)
	assert.Equal(t, "115.98", sentBody.AmountToCollect)
}

// TestPathaoAdapter_Book_FallbackTrackingID verifies the synthesized token
// when the response carries no consignment id.
func TestPathaoAdapter_Book_FallbackTrackingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type": "success", "code": 200, "data": {}}`))
	}))
	defer server.Close()

	adapter := NewPathaoAdapter(server.URL, pathaoCreds(), 60)
	result := adapter.Book(context.Background(), testOrder())

	require.True(t, result.Success)
	assert.Equal(t, "PT-ORD-1", result.TrackingID)
}

// TestPathaoAdapter_Book_MissingStoreID verifies the config gate: no network
// call, failure result naming the missing field.
func TestPathaoAdapter_Book_MissingStoreID(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	creds := &staticCourierCredentials{creds: settingsdomain.CourierCredentials{
		Pathao: settingsdomain.PathaoCredentials{AccessToken: "pt_token"},
	}}

	adapter := NewPathaoAdapter(server.URL, creds, 60)
	result := adapter.Book(context.Background(), testOrder())

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Pathao store ID")
	assert.False(t, called, "no network call may happen without complete credentials")
}

// TestPathaoAdapter_Book_RemoteRejection verifies the error envelope handling.
func TestPathaoAdapter_Book_RemoteRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message": "The recipient phone field is required.", "type": "error", "code": 422}`))
	}))
	defer server.Close()

	adapter := NewPathaoAdapter(server.URL, pathaoCreds(), 60)
	result := adapter.Book(context.Background(), testOrder())

	assert.False(t, result.Success)
	assert.Equal(t, "The recipient phone field is required.", result.Message)
}

// TestPathaoAdapter_Book_ErrorTypeOn200 verifies type=error is a failure even
// with an HTTP 200.
func TestPathaoAdapter_Book_ErrorTypeOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "Store is inactive.", "type": "error", "code": 400}`))
	}))
	defer server.Close()

	adapter := NewPathaoAdapter(server.URL, pathaoCreds(), 60)
	result := adapter.Book(context.Background(), testOrder())

	assert.False(t, result.Success)
	assert.Equal(t, "Store is inactive.", result.Message)
}

// TestPathaoAdapter_Book_NonJSONResponse verifies a tagged failure, not a panic.
func TestPathaoAdapter_Book_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	adapter := NewPathaoAdapter(server.URL, pathaoCreds(), 60)
	result := adapter.Book(context.Background(), testOrder())

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "non-JSON")
}

// TestPathaoAdapter_CustomerHistory verifies stats fetching and the derived
// returned count.
func TestPathaoAdapter_CustomerHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/aladdin/api/v1/user/success", r.URL.Path)
		assert.Equal(t, "+8801712345678", r.URL.Query().Get("phone"))
		assert.Equal(t, "Bearer pt_token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"customer": {"total_delivery": 8, "successful_delivery": 6}}}`))
	}))
	defer server.Close()

	adapter := NewPathaoAdapter(server.URL, pathaoCreds(), 60)
	history, err := adapter.CustomerHistory(context.Background(), "+8801712345678")

	require.NoError(t, err)
	assert.Equal(t, "pathao", history.Source)
	assert.Equal(t, 8, history.TotalParcels)
	assert.Equal(t, 6, history.Delivered)
	assert.Equal(t, 2, history.Returned)
	assert.Equal(t, 0, history.Pending)
}

// TestPathaoAdapter_CustomerHistory_MissingToken verifies the configuration
// error is distinct from remote failures.
func TestPathaoAdapter_CustomerHistory_MissingToken(t *testing.T) {
	adapter := NewPathaoAdapter("http://unused.local", &staticCourierCredentials{}, 60)
	_, err := adapter.CustomerHistory(context.Background(), "+8801712345678")

	require.Error(t, err)
	assert.Equal(t, apierr.KindConfiguration, apierr.KindOf(err))
	assert.Contains(t, apierr.Message(err), "Pathao access token")
}

// TestPathaoAdapter_Courier verifies the capability tag.
func TestPathaoAdapter_Courier(t *testing.T) {
	adapter := NewPathaoAdapter("http://unused.local", pathaoCreds(), 60)
	assert.Equal(t, domain.CourierPathao, adapter.Courier())
}
