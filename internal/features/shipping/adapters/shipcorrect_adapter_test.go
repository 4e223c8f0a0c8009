package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-api/internal/core/config"
	"storefront-api/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConsignment() domain.Consignment {
	return domain.Consignment{
		ClientOrderNo: "MO007",
		Prepaid:       true,
		TotalAmount:   decimal.RequireFromString("500"),
		Recipient: domain.Recipient{
			FullName:     "Asha Rao",
			AddressLine1: "12 Temple Road",
			Landmark:     "Near Clock Tower",
			City:         "Mysuru",
			State:        "Karnataka",
			Pincode:      "570 001",
			Phone:        "+91 98765 43210",
		},
		Items: []domain.Item{
			{Name: "Sesame Oil 1L", Quantity: 2, UnitPrice: decimal.RequireFromString("250")},
			{Name: "Coconut Oil 500ml", Quantity: 1, UnitPrice: decimal.RequireFromString("120")},
		},
	}
}

func newTestShipCorrect(url string) *ShipCorrectAdapter {
	a := NewShipCorrectAdapter(config.ShipCorrectConfig{
		APIURL:       url,
		APIKey:       "ship_key",
		DefaultEmail: "orders@storefront.local",
		Timeout:      5 * time.Second,
	}, nil)
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return a
}

func TestShipCorrectAdapter_CreateShipment_Success(t *testing.T) {
	var got forwardOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":true,"order_no":"SC-99812"}`))
	}))
	defer server.Close()

	shipment, err := newTestShipCorrect(server.URL).CreateShipment(context.Background(), sampleConsignment())
	require.NoError(t, err)
	assert.Equal(t, "SC-99812", shipment.ProviderOrderNo)

	assert.Equal(t, "ship_key", got.APIKey)
	assert.Equal(t, "Asha Rao", got.CustomerName)
	assert.Equal(t, "orders@storefront.local", got.CustomerEmail)
	assert.Equal(t, "Near Clock Tower", got.CustomerAddress2)
	assert.Equal(t, "570001", got.CustomerAddressPincode)
	assert.Equal(t, "9876543210", got.CustomerContactNumber1)
	assert.Equal(t, "Sesame Oil 1L", got.ProductName)
	assert.Equal(t, "2", got.Quantity)
	assert.Equal(t, "250", got.MRP)
	assert.Equal(t, "500", got.TotalAmount)
	assert.Equal(t, "PREPAID", got.PayMode)
	assert.Equal(t, "SKU-1700000000000", got.SKU)
	assert.Equal(t, "MO007", got.ClientOrderNo)
}

func TestShipCorrectAdapter_CreateShipment_NestedOrderNo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"awb_number":1234567}}`))
	}))
	defer server.Close()

	c := sampleConsignment()
	c.Prepaid = false
	shipment, err := newTestShipCorrect(server.URL).CreateShipment(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "1234567", shipment.ProviderOrderNo)
}

func TestShipCorrectAdapter_CreateShipment_AcceptedWithoutKnownReference(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown reference key", body: `{"status":"success","message":"Order created","reference":"R-1"}`},
		{name: "status only", body: `{"status":true}`},
		{name: "not json", body: `Order created`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			shipment, err := newTestShipCorrect(server.URL).CreateShipment(context.Background(), sampleConsignment())
			require.NoError(t, err)
			assert.Equal(t, "MO007", shipment.ProviderOrderNo)
			assert.Equal(t, tt.body, shipment.Acknowledgement)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestShipCorrectAdapter_CreateShipment_Waybill(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","message":"Order created","waybill":"1490831234"}`))
	}))
	defer server.Close()

	shipment, err := newTestShipCorrect(server.URL).CreateShipment(context.Background(), sampleConsignment())
	require.NoError(t, err)
	assert.Equal(t, "1490831234", shipment.ProviderOrderNo)
}

func TestShipCorrectAdapter_CreateShipment_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "rejected", status: http.StatusOK, body: `{"status":false,"message":"invalid pincode","order_no":"X"}`},
		{name: "declined with string status", status: http.StatusOK, body: `{"status":"error","message":"duplicate order"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			shipment, err := newTestShipCorrect(server.URL).CreateShipment(context.Background(), sampleConsignment())
			assert.Nil(t, shipment)
			assert.ErrorIs(t, err, domain.ErrShipping)
		})
	}
}

func TestShipCorrectAdapter_CreateShipment_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestShipCorrect(url).CreateShipment(context.Background(), sampleConsignment())
	assert.ErrorIs(t, err, domain.ErrShipping)
}

func TestShipCorrectAdapter_CreateShipment_NoItems(t *testing.T) {
	c := sampleConsignment()
	c.Items = nil

	_, err := newTestShipCorrect("http://127.0.0.1:1").CreateShipment(context.Background(), c)
	assert.ErrorIs(t, err, domain.ErrShipping)
}
