package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-dashboard/internal/core/config"
	"order-dashboard/internal/core/logger"
	"order-dashboard/internal/core/metrics"
)

// TestNew verifies that New creates a Server with the correct configuration.
func TestNew(t *testing.T) {
	cfg := &config.AppConfig{
		ServerPort: 8080,
	}

	logger.Init("development", "debug")
	metrics.RegisterDefault()
	srv := New(cfg)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.App)
	assert.Equal(t, cfg, srv.cfg)
}

// TestServer_MetricsEndpoint verifies the Prometheus endpoint is wired.
func TestServer_MetricsEndpoint(t *testing.T) {
	logger.Init("development", "error")
	metrics.RegisterDefault()
	srv := New(&config.AppConfig{ServerPort: 8080})

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := srv.App.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

// TestServer_Run_Error verifies that Run returns an error when binding fails (e.g., privileged port).
func TestServer_Run_Error(t *testing.T) {
	// Privileged port 1 should fail
	cfg := &config.AppConfig{
		ServerPort: 1,
	}
	logger.Init("development", "error")
	metrics.RegisterDefault()

	srv := New(cfg)

	errCh := make(chan error)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(1 * time.Second):
		srv.App.Shutdown()
		t.Log("Server unexpectedly started or timed out on Error test")
	}
}
