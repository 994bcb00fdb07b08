package adapter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"order-dashboard/internal/core/apierr"
	"order-dashboard/internal/core/httpclient"
	"order-dashboard/internal/core/logger"
	"order-dashboard/internal/core/metrics"
	courierdomain "order-dashboard/internal/features/couriers/domain"
	"order-dashboard/internal/features/orders/domain"
	"order-dashboard/internal/features/orders/ports"
	settingsdomain "order-dashboard/internal/features/settings/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WooCommerceAdapter implements the OrderProvider interface against the
// WooCommerce REST API. Credentials are read from the injected source on
// every call so a settings change takes effect immediately.
type WooCommerceAdapter struct {
	client *http.Client
	creds  ports.CredentialSource
	logger *zap.Logger
}

// NewWooCommerceAdapter creates a new instance of WooCommerceAdapter.
func NewWooCommerceAdapter(creds ports.CredentialSource) *WooCommerceAdapter {
	return &WooCommerceAdapter{
		client: httpclient.NewClient(10 * time.Second),
		creds:  creds,
		logger: logger.Named("woocommerce"),
	}
}

// FetchOrders retrieves the order list and maps it to the local model.
func (a *WooCommerceAdapter) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	body, err := a.call(ctx, http.MethodGet, "orders", url.Values{"per_page": {"100"}}, nil)
	if err != nil {
		metrics.OrderFetches.WithLabelValues("error").Inc()
		return nil, err
	}

	var wcOrders []wcOrder
	if err := json.Unmarshal(body, &wcOrders); err != nil {
		metrics.OrderFetches.WithLabelValues("error").Inc()
		return nil, apierr.Wrap(apierr.KindMalformedResponse, err,
			"the store response was not a valid order list")
	}

	orders := make([]domain.Order, 0, len(wcOrders))
	for _, wc := range wcOrders {
		orders = append(orders, a.mapToDomain(wc))
	}

	metrics.OrderFetches.WithLabelValues("ok").Inc()
	return orders, nil
}

// UpdateOrderStatus maps the local status to the remote vocabulary and pushes
// it. An unpushable status fails before any network call.
func (a *WooCommerceAdapter) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	remote, err := domain.ToRemoteStatus(status)
	if err != nil {
		metrics.StatusUpdates.WithLabelValues(string(status), "unmapped").Inc()
		return nil, err
	}

	payload, _ := json.Marshal(map[string]string{"status": remote})
	body, err := a.call(ctx, http.MethodPut, "orders/"+orderID, nil, payload)
	if err != nil {
		metrics.StatusUpdates.WithLabelValues(string(status), "error").Inc()
		return nil, err
	}

	var wc wcOrder
	if err := json.Unmarshal(body, &wc); err != nil {
		metrics.StatusUpdates.WithLabelValues(string(status), "error").Inc()
		return nil, apierr.Wrap(apierr.KindMalformedResponse, err,
			"the store response was not a valid order")
	}

	order := a.mapToDomain(wc)
	metrics.StatusUpdates.WithLabelValues(string(status), "ok").Inc()
	return &order, nil
}

// RecordBooking persists the courier assignment onto the remote order's
// metadata, under the same keys FetchOrders reads back.
func (a *WooCommerceAdapter) RecordBooking(ctx context.Context, orderID string, courier courierdomain.Courier, trackingID string) error {
	payload, _ := json.Marshal(map[string]any{
		"meta_data": []map[string]string{
			{"key": "_courier", "value": string(courier)},
			{"key": "_tracking_id", "value": trackingID},
		},
	})
	_, err := a.call(ctx, http.MethodPut, "orders/"+orderID, nil, payload)
	return err
}

// FetchCustomerHistory aggregates the customer's store-side order history,
// matched by phone or email.
func (a *WooCommerceAdapter) FetchCustomerHistory(ctx context.Context, identifier string) (*courierdomain.CustomerHistory, error) {
	body, err := a.call(ctx, http.MethodGet, "orders", url.Values{
		"search":   {identifier},
		"per_page": {"100"},
	}, nil)
	if err != nil {
		return nil, err
	}

	var wcOrders []wcOrder
	if err := json.Unmarshal(body, &wcOrders); err != nil {
		return nil, apierr.Wrap(apierr.KindMalformedResponse, err,
			"the store response was not a valid order list")
	}

	history := &courierdomain.CustomerHistory{Source: "store"}
	for _, wc := range wcOrders {
		order := a.mapToDomain(wc)
		history.TotalParcels++
		switch order.Status {
		case domain.OrderStatusDelivered:
			history.Delivered++
		case domain.OrderStatusCancelled:
			history.Returned++
		default:
			history.Pending++
		}
	}
	return history, nil
}

// HealthCheck verifies that the store API is reachable and credentials are valid.
func (a *WooCommerceAdapter) HealthCheck(ctx context.Context) error {
	_, err := a.call(ctx, http.MethodGet, "orders", url.Values{"per_page": {"1"}}, nil)
	return err
}

// call performs one authenticated request against the store, retrying once
// through the rest_route fallback on 404, and classifies every failure mode
// into a distinct error kind.
func (a *WooCommerceAdapter) call(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	creds, err := a.creds.StoreCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store credentials: %w", err)
	}
	if missing := creds.MissingFields(); len(missing) > 0 {
		return nil, apierr.New(apierr.KindConfiguration,
			"store connection is not configured: missing %s", strings.Join(missing, ", "))
	}

	body, err := a.execute(ctx, method, prettyEndpoint(creds, path, query), creds, payload)
	if apierr.IsKind(err, apierr.KindNotFound) {
		// Stores without pretty permalinks route the REST API through
		// ?rest_route= instead of /wp-json/.
		a.logger.Debug("Primary endpoint returned 404, retrying rest_route fallback",
			zap.String("path", path))
		var fallbackErr error
		body, fallbackErr = a.execute(ctx, method, restRouteEndpoint(creds, path, query), creds, payload)
		if fallbackErr != nil {
			metrics.GatewayErrors.WithLabelValues("woocommerce", string(apierr.KindOf(err))).Inc()
			return nil, err
		}
		return body, nil
	}
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("woocommerce", string(apierr.KindOf(err))).Inc()
		return nil, err
	}
	return body, nil
}

// execute runs a single HTTP exchange and classifies the outcome.
func (a *WooCommerceAdapter) execute(ctx context.Context, method, endpoint string, creds settingsdomain.StoreCredentials, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindTransport, err, "failed to build store request")
	}

	authVal := make([]byte, 0, len(creds.ConsumerKey)+len(creds.ConsumerSecret)+1)
	authVal = fmt.Appendf(authVal, "%s:%s", creds.ConsumerKey, creds.ConsumerSecret)
	req.Header.Add("Authorization", "Basic "+base64.StdEncoding.EncodeToString(authVal))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, a.classifyTransport(creds.SiteURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindTransport, err, "failed to read store response")
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apierr.New(apierr.KindAuthentication,
			"the store rejected the API credentials; check consumer key and secret")
	case http.StatusNotFound:
		return nil, apierr.New(apierr.KindNotFound,
			"the store API endpoint was not found; check the site URL and the permalink settings")
	}

	if !looksLikeJSON(resp.Header.Get("Content-Type"), raw) {
		return nil, apierr.New(apierr.KindMalformedResponse,
			"the store returned a non-JSON response (often an HTML login or error page); check the site URL")
	}

	if resp.StatusCode >= 400 {
		if msg := remoteMessage(raw); msg != "" {
			return nil, apierr.New(apierr.KindRemoteBusiness, "the store reported an error: %s", msg)
		}
		return nil, apierr.New(apierr.KindRemoteBusiness,
			"the store returned status %d", resp.StatusCode)
	}

	return raw, nil
}

// classifyTransport turns a client error into an actionable transport error.
func (a *WooCommerceAdapter) classifyTransport(siteURL string, cause error) error {
	msg := cause.Error()
	switch {
	case strings.HasPrefix(strings.ToLower(siteURL), "http://"):
		return apierr.Wrap(apierr.KindTransport, cause,
			"could not reach the store over plain HTTP; browsers and proxies may block mixed content, use an https:// site URL")
	case strings.Contains(msg, "x509") || strings.Contains(msg, "tls"):
		return apierr.Wrap(apierr.KindTransport, cause,
			"TLS handshake with the store failed; check the site certificate")
	default:
		return apierr.Wrap(apierr.KindTransport, cause,
			"could not reach the store; check the site URL and your network connection")
	}
}

// prettyEndpoint builds the standard /wp-json/ REST URL.
func prettyEndpoint(creds settingsdomain.StoreCredentials, path string, query url.Values) string {
	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/%s", strings.TrimRight(creds.SiteURL, "/"), path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

// restRouteEndpoint builds the ?rest_route= fallback URL used by stores
// without pretty permalinks.
func restRouteEndpoint(creds settingsdomain.StoreCredentials, path string, query url.Values) string {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("rest_route", "/wc/v3/"+path)
	return fmt.Sprintf("%s/?%s", strings.TrimRight(creds.SiteURL, "/"), q.Encode())
}

// looksLikeJSON sniffs both the declared content type and the body itself;
// misconfigured stores declare JSON while serving HTML and vice versa.
func looksLikeJSON(contentType string, body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return false
	}
	if contentType == "" {
		return json.Valid(trimmed)
	}
	if strings.Contains(contentType, "json") {
		return true
	}
	return json.Valid(trimmed)
}

// remoteMessage extracts the error message from a remote JSON error body.
func remoteMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}

// mapToDomain converts a raw WooCommerce order into the local Order.
func (a *WooCommerceAdapter) mapToDomain(wc wcOrder) domain.Order {
	courier, trackingID := extractBooking(wc.MetaData)

	status := a.mapStatus(wc.Status, trackingID)

	total, err := decimal.NewFromString(wc.Total)
	if err != nil && wc.Total != "" {
		a.logger.Warn("Failed to parse order total",
			zap.Int("order_id", wc.ID),
			zap.String("total", wc.Total),
			zap.Error(err),
		)
	}

	name := strings.TrimSpace(wc.Billing.FirstName + " " + wc.Billing.LastName)

	return domain.Order{
		ID:              strconv.Itoa(wc.ID),
		Status:          status,
		CustomerName:    name,
		Email:           wc.Billing.Email,
		Phone:           wc.Billing.Phone,
		ShippingAddress: joinAddress(wc.Shipping),
		Total:           total,
		Courier:         courier,
		TrackingID:      trackingID,
		CreatedAt:       time.Time(wc.DateCreated),
		Items:           mapItems(wc.LineItems),
	}
}

// mapStatus normalizes the remote status. An order that already carries
// courier tracking reads as Shipped regardless of the store status.
func (a *WooCommerceAdapter) mapStatus(remote, trackingID string) domain.OrderStatus {
	if trackingID != "" {
		return domain.OrderStatusShipped
	}
	status, ok := domain.FromRemoteStatus(remote)
	if !ok {
		a.logger.Warn("Unknown remote order status", zap.String("status", remote))
		return domain.OrderStatusPending
	}
	return status
}

// extractBooking reads courier booking fields from order metadata. The
// underscore keys are the ones RecordBooking writes; the rest cover stores
// where a shipment plugin populated tracking data before this dashboard.
func extractBooking(meta []wcMetaData) (courierdomain.Courier, string) {
	var courierName, trackingID string
	for _, m := range meta {
		val, ok := m.Value.(string)
		if !ok || val == "" {
			continue
		}
		switch m.Key {
		case "courier", "_courier":
			courierName = val
		case "tracking_id", "_tracking_id", "tracking_number", "_tracking_number":
			trackingID = val
		}
	}
	if trackingID == "" {
		return "", ""
	}
	courier, _ := courierdomain.ParseCourier(courierName)
	return courier, trackingID
}

// joinAddress flattens the shipping block into the free-text address the
// couriers expect.
func joinAddress(s wcShipping) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Address1, s.City, s.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// mapItems converts WooCommerce line items to domain OrderItems.
func mapItems(wcItems []wcLineItem) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(wcItems))
	for _, item := range wcItems {
		price, _ := decimal.NewFromString(item.Price.String())
		items = append(items, domain.OrderItem{
			ID:        strconv.Itoa(item.ID),
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
			ImageURL:  item.Image.Src,
		})
	}
	return items
}

// internal structs for mapping

// wcOrder represents the JSON structure of an order from the WooCommerce API.
type wcOrder struct {
	// ID is the unique order ID.
	ID int `json:"id"`
	// Status is the remote order status (e.g., pending, processing, completed).
	Status string `json:"status"`
	// DateCreated is the timestamp when the order was created.
	DateCreated wcTime `json:"date_created"`
	// Total is the order total, serialized by WooCommerce as a string.
	Total string `json:"total"`
	// Billing holds the billing contact details.
	Billing wcBilling `json:"billing"`
	// Shipping holds the shipping address details.
	Shipping wcShipping `json:"shipping"`
	// LineItems contains the products ordered.
	LineItems []wcLineItem `json:"line_items"`
	// MetaData contains extra fields, including booking info.
	MetaData []wcMetaData `json:"meta_data"`
}

// wcMetaData represents a key-value pair in WooCommerce metadata.
type wcMetaData struct {
	// Key is the metadata key name.
	Key string `json:"key"`
	// Value is the metadata value, which can be of various types.
	Value interface{} `json:"value"`
}

// wcBilling holds billing contact information.
type wcBilling struct {
	// FirstName is the customer's first name.
	FirstName string `json:"first_name"`
	// LastName is the customer's last name.
	LastName string `json:"last_name"`
	// Email is the customer's email address.
	Email string `json:"email"`
	// Phone is the customer's phone number.
	Phone string `json:"phone"`
}

// wcShipping holds shipping address information.
type wcShipping struct {
	// Address1 is the primary address line.
	Address1 string `json:"address_1"`
	// City is the shipping city.
	City string `json:"city"`
	// State is the shipping state or province.
	State string `json:"state"`
}

// wcLineItem represents a product in the WooCommerce order.
type wcLineItem struct {
	// ID is the unique identifier for the line item.
	ID int `json:"id"`
	// Name is the product name.
	Name string `json:"name"`
	// Quantity is the number of units ordered.
	Quantity int `json:"quantity"`
	// Price is the per-unit price.
	Price json.Number `json:"price"`
	// Image holds the product image details.
	Image wcImage `json:"image"`
}

// wcImage holds the product image URL.
type wcImage struct {
	// Src is the source URL of the image.
	Src string `json:"src"`
}

// wcTime is a custom helper struct to handle WooCommerce's date format.
type wcTime time.Time

// UnmarshalJSON parses the custom date format used by WooCommerce.
func (t *wcTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	// WooCommerce usually returns ISO8601 "2018-12-19T14:48:25"
	if s == "null" {
		*t = wcTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		// Try with timezone just in case
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		logger.Get().Warn("Failed to parse date", zap.String("date", s), zap.Error(err))
		return nil // Return zero time
	}
	*t = wcTime(parsed)
	return nil
}
