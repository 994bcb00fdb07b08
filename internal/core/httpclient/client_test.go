package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"order-dashboard/internal/core/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoggingRoundTripper verifies that requests succeed and carry a request id.
func TestLoggingRoundTripper(t *testing.T) {
	var gotRequestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	logger.Init("development", "debug")

	client := NewClient(1 * time.Second)
	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, gotRequestID)
}

// TestLoggingRoundTripper_PreservesRequestID verifies a caller-set id is not replaced.
func TestLoggingRoundTripper_PreservesRequestID(t *testing.T) {
	var gotRequestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(1 * time.Second)
	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "fixed-id")

	_, err = client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", gotRequestID)
}

// TestLoggingRoundTripper_Error verifies that failed requests surface the error.
func TestLoggingRoundTripper_Error(t *testing.T) {
	logger.Init("development", "debug")

	client := NewClient(1 * time.Second)
	_, err := client.Get("http://invalid-url-that-does-not-exist.local")
	require.Error(t, err)
}
