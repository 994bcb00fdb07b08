package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/core/metrics"
)

// newConfigError builds the configuration error history calls return when a
// courier's keys are absent. Distinct from remote-service failures.
func newConfigError(courier string, missing []string) error {
	metrics.GatewayErrors.WithLabelValues(strings.ToLower(courier), string(apierr.KindConfiguration)).Inc()
	return apierr.New(apierr.KindConfiguration,
		"%s is not configured: missing %s", courier, strings.Join(missing, ", "))
}

// doJSON executes req and decodes a JSON body into dst, classifying the
// failure modes the courier history endpoints share.
func doJSON(client *http.Client, req *http.Request, courier string, dst any) error {
	gateway := strings.ToLower(courier)

	resp, err := client.Do(req)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindTransport)).Inc()
		return apierr.Wrap(apierr.KindTransport, err, "could not reach %s", courier)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindTransport)).Inc()
		return apierr.Wrap(apierr.KindTransport, err, "could not read the %s response", courier)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindAuthentication)).Inc()
		return apierr.New(apierr.KindAuthentication, "%s rejected the API credentials", courier)
	case http.StatusNotFound:
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindNotFound)).Inc()
		return apierr.New(apierr.KindNotFound, "the %s endpoint was not found", courier)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '<' || !json.Valid(trimmed) {
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindMalformedResponse)).Inc()
		return apierr.New(apierr.KindMalformedResponse, "%s returned a non-JSON response", courier)
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(trimmed, &envelope)
		msg := envelope.Message
		if msg == "" {
			msg = fmt.Sprintf("%s returned status %d", courier, resp.StatusCode)
		}
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindRemoteBusiness)).Inc()
		return apierr.New(apierr.KindRemoteBusiness, "%s", msg)
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		metrics.GatewayErrors.WithLabelValues(gateway, string(apierr.KindMalformedResponse)).Inc()
		return apierr.Wrap(apierr.KindMalformedResponse, err, "%s returned an unexpected payload", courier)
	}
	return nil
}
