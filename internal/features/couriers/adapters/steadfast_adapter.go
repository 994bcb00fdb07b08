package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"order-dashboard/internal/core/httpclient"
	"order-dashboard/internal/core/logger"
	"order-dashboard/internal/core/metrics"
	"order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/couriers/ports"
	ordersdomain "order-dashboard/internal/features/orders/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SteadfastAdapter books parcels through the Steadfast courier API.
// Auth is two static headers: Api-Key and Secret-Key.
type SteadfastAdapter struct {
	baseURL string
	creds   ports.CredentialSource
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewSteadfastAdapter creates a Steadfast adapter with the given base URL and
// outbound rate limit (requests per minute).
func NewSteadfastAdapter(baseURL string, creds ports.CredentialSource, requestsPerMinute int) *SteadfastAdapter {
	return &SteadfastAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  httpclient.NewClient(15 * time.Second),
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5),
		logger:  logger.Named("steadfast"),
	}
}

// Courier identifies this provider.
func (a *SteadfastAdapter) Courier() domain.Courier {
	return domain.CourierSteadfast
}

// steadfastBookingRequest is the create_order payload.
type steadfastBookingRequest struct {
	Invoice          string `json:"invoice"`
	RecipientName    string `json:"recipient_name"`
	RecipientPhone   string `json:"recipient_phone"`
	RecipientAddress string `json:"recipient_address"`
	CODAmount        string `json:"cod_amount"`
}

// steadfastBookingResponse is the create_order response envelope.
type steadfastBookingResponse struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Consignment struct {
		ConsignmentID json.Number `json:"consignment_id"`
		TrackingCode  string      `json:"tracking_code"`
	} `json:"consignment"`
}

// Book submits the order. All failure modes come back in the result.
func (a *SteadfastAdapter) Book(ctx context.Context, order ordersdomain.Order) domain.BookingResult {
	creds, err := a.creds.CourierCredentials(ctx)
	if err != nil {
		return a.failure(fmt.Sprintf("could not read Steadfast credentials: %v", err))
	}
	if missing := creds.Steadfast.MissingFields(); len(missing) > 0 {
		return a.failure(fmt.Sprintf("Steadfast booking is not configured: missing %s", strings.Join(missing, ", ")))
	}

	payload, _ := json.Marshal(steadfastBookingRequest{
		Invoice:          order.ID,
		RecipientName:    order.CustomerName,
		RecipientPhone:   order.Phone,
		RecipientAddress: order.ShippingAddress,
		CODAmount:        order.Total.StringFixed(2),
	})

	if err := a.limiter.Wait(ctx); err != nil {
		return a.failure(fmt.Sprintf("Steadfast booking aborted: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/create_order", bytes.NewReader(payload))
	if err != nil {
		return a.failure(fmt.Sprintf("could not build Steadfast request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", creds.Steadfast.APIKey)
	req.Header.Set("Secret-Key", creds.Steadfast.SecretKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return a.failure(fmt.Sprintf("could not reach Steadfast: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return a.failure(fmt.Sprintf("could not read Steadfast response: %v", err))
	}

	var parsed steadfastBookingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return a.failure("Steadfast returned an unexpected non-JSON response")
	}

	if resp.StatusCode != http.StatusOK || parsed.Status != http.StatusOK {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("Steadfast rejected the booking (status %d)", resp.StatusCode)
		}
		return a.failure(msg)
	}

	trackingID := parsed.Consignment.TrackingCode
	if trackingID == "" {
		// Fallback token; real tracking codes are preferred when present.
		trackingID = fmt.Sprintf("%s-%s", a.Courier().TrackingPrefix(), order.ID)
		a.logger.Warn("Steadfast response had no tracking code, synthesized fallback",
			zap.String("order_id", order.ID),
			zap.String("tracking_id", trackingID),
		)
	}

	metrics.Bookings.WithLabelValues(string(a.Courier()), "success").Inc()
	return domain.BookingResult{
		Success:       true,
		TrackingID:    trackingID,
		ConsignmentID: parsed.Consignment.ConsignmentID.String(),
	}
}

// steadfastHistoryResponse is the fraud_check response envelope.
type steadfastHistoryResponse struct {
	Status         int `json:"status"`
	TotalDelivered int `json:"total_delivered"`
	TotalCancelled int `json:"total_cancelled"`
	TotalPending   int `json:"total_pending"`
}

// CustomerHistory fetches per-customer delivery statistics.
func (a *SteadfastAdapter) CustomerHistory(ctx context.Context, phone string) (*domain.CustomerHistory, error) {
	creds, err := a.creds.CourierCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read Steadfast credentials: %w", err)
	}
	if missing := creds.Steadfast.MissingFields(); len(missing) > 0 {
		return nil, newConfigError("Steadfast", missing)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("steadfast history aborted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/fraud_check/"+phone, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build steadfast request: %w", err)
	}
	req.Header.Set("Api-Key", creds.Steadfast.APIKey)
	req.Header.Set("Secret-Key", creds.Steadfast.SecretKey)

	var parsed steadfastHistoryResponse
	if err := doJSON(a.client, req, "Steadfast", &parsed); err != nil {
		return nil, err
	}

	return &domain.CustomerHistory{
		Source:       string(domain.CourierSteadfast),
		TotalParcels: parsed.TotalDelivered + parsed.TotalCancelled + parsed.TotalPending,
		Delivered:    parsed.TotalDelivered,
		Returned:     parsed.TotalCancelled,
		Pending:      parsed.TotalPending,
	}, nil
}

func (a *SteadfastAdapter) failure(message string) domain.BookingResult {
	a.logger.Warn("Steadfast booking failed", zap.String("message", message))
	metrics.Bookings.WithLabelValues(string(a.Courier()), "failure").Inc()
	return domain.BookingResult{Success: false, Message: message}
}
