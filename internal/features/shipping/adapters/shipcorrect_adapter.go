package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/httpclient"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	"storefront-api/internal/features/shipping/domain"

	"go.uber.org/zap"
)

const maxResponseBody = 64 << 10

// ShipCorrectAdapter books forward shipments with ShipCorrect.
type ShipCorrectAdapter struct {
	client *http.Client
	config config.ShipCorrectConfig
	now    func() time.Time
}

// NewShipCorrectAdapter creates a new ShipCorrectAdapter. m may be nil.
func NewShipCorrectAdapter(cfg config.ShipCorrectConfig, m *metrics.Metrics) *ShipCorrectAdapter {
	return &ShipCorrectAdapter{
		client: httpclient.NewInstrumentedClient(cfg.Timeout, m),
		config: cfg,
		now:    time.Now,
	}
}

// CreateShipment submits the first item of the consignment. The provider takes a
// single line per call. Any failure is returned wrapped in domain.ErrShipping.
func (a *ShipCorrectAdapter) CreateShipment(ctx context.Context, c domain.Consignment) (*domain.Shipment, error) {
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("%w: consignment has no items", domain.ErrShipping)
	}

	payload := a.buildPayload(c)
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode payload: %v", domain.ErrShipping, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrShipping, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrShipping, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrShipping, err)
	}

	l := logger.FromContext(ctx)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.Warn("ShipCorrect rejected consignment",
			zap.String("client_order_no", c.ClientOrderNo),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: provider returned status %d", domain.ErrShipping, resp.StatusCode)
	}

	orderNo, accepted := parseOrderNo(body)
	if !accepted {
		l.Warn("ShipCorrect declined consignment",
			zap.String("client_order_no", c.ClientOrderNo),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("%w: provider declined consignment", domain.ErrShipping)
	}
	if orderNo == "" {
		// Booked, but under a key we do not recognise. Retrying would book it twice.
		orderNo = c.ClientOrderNo
		l.Warn("ShipCorrect acknowledgement without order number, using client order number",
			zap.String("client_order_no", c.ClientOrderNo),
			zap.ByteString("body", body),
		)
	}

	l.Info("ShipCorrect consignment booked",
		zap.String("client_order_no", c.ClientOrderNo),
		zap.String("provider_order_no", orderNo),
	)
	return &domain.Shipment{ProviderOrderNo: orderNo, Acknowledgement: string(body)}, nil
}

func (a *ShipCorrectAdapter) buildPayload(c domain.Consignment) forwardOrderRequest {
	r := c.Recipient
	item := c.Items[0]

	address1 := r.AddressLine1
	address2 := r.AddressLine2
	if address2 == "" {
		address2 = r.Landmark
	}
	email := strings.TrimSpace(r.Email)
	if email == "" {
		email = a.config.DefaultEmail
	}
	payMode := "COD"
	if c.Prepaid {
		payMode = "PREPAID"
	}

	return forwardOrderRequest{
		APIKey:                  a.config.APIKey,
		CustomerName:            strings.TrimSpace(r.FullName),
		CustomerEmail:           email,
		CustomerAddress1:        address1,
		CustomerAddress2:        address2,
		CustomerAddressLandmark: r.Landmark,
		CustomerAddressState:    r.State,
		CustomerAddressCity:     r.City,
		CustomerAddressPincode:  domain.CleanPincode(r.Pincode),
		CustomerContactNumber1:  domain.CleanPhone(r.Phone),
		CustomerContactNumber2:  "",
		ProductID:               "1",
		ProductName:             item.Name,
		SKU:                     fmt.Sprintf("SKU-%d", a.now().UnixMilli()),
		MRP:                     item.UnitPrice.String(),
		ProductSize:             "Standard",
		ProductWeight:           "1",
		ProductColor:            "Standard",
		PayMode:                 payMode,
		Quantity:                fmt.Sprintf("%d", item.Quantity),
		TotalAmount:             c.TotalAmount.String(),
		ClientOrderNo:           c.ClientOrderNo,
	}
}

// parseOrderNo reads the provider order number from a 2xx body, at the top level
// or under "data". Only an explicitly falsy "status" declines the consignment; a
// body that is not JSON or names its reference differently still counts as booked.
func parseOrderNo(body []byte) (string, bool) {
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", true
	}
	if status, ok := resp["status"]; ok && isFalsy(status) {
		return "", false
	}

	candidates := []map[string]any{resp}
	if data, ok := resp["data"].(map[string]any); ok {
		candidates = append(candidates, data)
	}
	for _, m := range candidates {
		for _, key := range []string{"order_no", "orderNo", "order_id", "awb_number", "awb_no", "awb", "waybill"} {
			if s := stringValue(m[key]); s != "" {
				return s, true
			}
		}
	}
	return "", true
}

func isFalsy(v any) bool {
	switch s := v.(type) {
	case bool:
		return !s
	case float64:
		return s == 0
	case string:
		switch strings.ToLower(s) {
		case "false", "0", "error", "failed", "failure":
			return true
		}
	}
	return false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return fmt.Sprintf("%.0f", s)
	}
	return ""
}

type forwardOrderRequest struct {
	APIKey                  string `json:"api_key"`
	CustomerName            string `json:"customer_name"`
	CustomerEmail           string `json:"customer_email"`
	CustomerAddress1        string `json:"customer_address1"`
	CustomerAddress2        string `json:"customer_address2"`
	CustomerAddressLandmark string `json:"customer_address_landmark"`
	CustomerAddressState    string `json:"customer_address_state"`
	CustomerAddressCity     string `json:"customer_address_city"`
	CustomerAddressPincode  string `json:"customer_address_pincode"`
	CustomerContactNumber1  string `json:"customer_contact_number1"`
	CustomerContactNumber2  string `json:"customer_contact_number2"`
	ProductID               string `json:"product_id"`
	ProductName             string `json:"product_name"`
	SKU                     string `json:"sku"`
	MRP                     string `json:"mrp"`
	ProductSize             string `json:"product_size"`
	ProductWeight           string `json:"product_weight"`
	ProductColor            string `json:"product_color"`
	PayMode                 string `json:"pay_mode"`
	Quantity                string `json:"quantity"`
	TotalAmount             string `json:"total_amount"`
	ClientOrderNo           string `json:"client_order_no"`
}
