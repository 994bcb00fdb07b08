package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
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

// Delivery parameters Pathao requires on every consignment. The dashboard
// always books standard 48-hour parcel delivery.
const (
	pathaoDeliveryTypeNormal = 48
	pathaoItemTypeParcel     = 2
)

// PathaoAdapter books parcels through the Pathao merchant API.
// Auth is a bearer access token plus a numeric store id in the payload.
type PathaoAdapter struct {
	baseURL string
	creds   ports.CredentialSource
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewPathaoAdapter creates a Pathao adapter with the given base URL and
// outbound rate limit (requests per minute).
func NewPathaoAdapter(baseURL string, creds ports.CredentialSource, requestsPerMinute int) *PathaoAdapter {
	return &PathaoAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  httpclient.NewClient(15 * time.Second),
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5),
		logger:  logger.Named("pathao"),
	}
}

// Courier identifies this provider.
func (a *PathaoAdapter) Courier() domain.Courier {
	return domain.CourierPathao
}

// pathaoBookingRequest is the consignment creation payload.
type pathaoBookingRequest struct {
	StoreID          string `json:"store_id"`
	MerchantOrderID  string `json:"merchant_order_id"`
	RecipientName    string `json:"recipient_name"`
	RecipientPhone   string `json:"recipient_phone"`
	RecipientAddress string `json:"recipient_address"`
	DeliveryType     int    `json:"delivery_type"`
	ItemType         int    `json:"item_type"`
	ItemQuantity     int    `json:"item_quantity"`
	AmountToCollect  string `json:"amount_to_collect"`
}

// pathaoBookingResponse is the consignment creation response envelope.
type pathaoBookingResponse struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Data    struct {
		ConsignmentID string `json:"consignment_id"`
		OrderStatus   string `json:"order_status"`
	} `json:"data"`
}

// Book submits the order. All failure modes come back in the result.
func (a *PathaoAdapter) Book(ctx context.Context, order ordersdomain.Order) domain.BookingResult {
	creds, err := a.creds.CourierCredentials(ctx)
	if err != nil {
		return a.failure(fmt.Sprintf("could not read Pathao credentials: %v", err))
	}
	if missing := creds.Pathao.MissingFields(); len(missing) > 0 {
		return a.failure(fmt.Sprintf("Pathao booking is not configured: missing %s", strings.Join(missing, ", ")))
	}

	quantity := 0
	for _, item := range order.Items {
		quantity += item.Quantity
	}
	if quantity == 0 {
		quantity = 1
	}

	payload, _ := json.Marshal(pathaoBookingRequest{
		StoreID:          creds.Pathao.StoreID,
		MerchantOrderID:  order.ID,
		RecipientName:    order.CustomerName,
		RecipientPhone:   order.Phone,
		RecipientAddress: order.ShippingAddress,
		DeliveryType:     pathaoDeliveryTypeNormal,
		ItemType:         pathaoItemTypeParcel,
		ItemQuantity:     quantity,
		AmountToCollect:  order.Total.StringFixed(2),
	})

	if err := a.limiter.Wait(ctx); err != nil {
		return a.failure(fmt.Sprintf("Pathao booking aborted: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/aladdin/api/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return a.failure(fmt.Sprintf("could not build Pathao request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.Pathao.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return a.failure(fmt.Sprintf("could not reach Pathao: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return a.failure(fmt.Sprintf("could not read Pathao response: %v", err))
	}

	var parsed pathaoBookingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return a.failure("Pathao returned an unexpected non-JSON response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || parsed.Type == "error" {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("Pathao rejected the booking (status %d)", resp.StatusCode)
		}
		return a.failure(msg)
	}

	trackingID := parsed.Data.ConsignmentID
	if trackingID == "" {
		// Fallback token; real consignment ids are preferred when present.
		trackingID = fmt.Sprintf("%s-%s", a.Courier().TrackingPrefix(), order.ID)
		a.logger.Warn("Pathao response had no consignment id, synthesized fallback",
			zap.String("order_id", order.ID),
			zap.String("tracking_id", trackingID),
		)
	}

	metrics.Bookings.WithLabelValues(string(a.Courier()), "success").Inc()
	return domain.BookingResult{
		Success:       true,
		TrackingID:    trackingID,
		ConsignmentID: parsed.Data.ConsignmentID,
	}
}

// pathaoHistoryResponse is the customer success-rate response envelope.
type pathaoHistoryResponse struct {
	Data struct {
		Customer struct {
			TotalDelivery      int `json:"total_delivery"`
			SuccessfulDelivery int `json:"successful_delivery"`
		} `json:"customer"`
	} `json:"data"`
}

// CustomerHistory fetches per-customer delivery statistics. Pathao reports
// totals and successes only; the remainder counts as returned.
func (a *PathaoAdapter) CustomerHistory(ctx context.Context, phone string) (*domain.CustomerHistory, error) {
	creds, err := a.creds.CourierCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read Pathao credentials: %w", err)
	}
	if missing := creds.Pathao.MissingFields(); len(missing) > 0 {
		return nil, newConfigError("Pathao", missing)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pathao history aborted: %w", err)
	}

	endpoint := fmt.Sprintf("%s/aladdin/api/v1/user/success?phone=%s", a.baseURL, url.QueryEscape(phone))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pathao request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Pathao.AccessToken)

	var parsed pathaoHistoryResponse
	if err := doJSON(a.client, req, "Pathao", &parsed); err != nil {
		return nil, err
	}

	total := parsed.Data.Customer.TotalDelivery
	delivered := parsed.Data.Customer.SuccessfulDelivery
	returned := total - delivered
	if returned < 0 {
		returned = 0
	}

	return &domain.CustomerHistory{
		Source:       string(domain.CourierPathao),
		TotalParcels: total,
		Delivered:    delivered,
		Returned:     returned,
		Pending:      0,
	}, nil
}

func (a *PathaoAdapter) failure(message string) domain.BookingResult {
	a.logger.Warn("Pathao booking failed", zap.String("message", message))
	metrics.Bookings.WithLabelValues(string(a.Courier()), "failure").Inc()
	return domain.BookingResult{Success: false, Message: message}
}
