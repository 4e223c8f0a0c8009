package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-api/internal/core/server"
	"storefront-api/internal/features/addresses/adapters"
	"storefront-api/internal/features/addresses/domain"
	"storefront-api/internal/features/addresses/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp() *fiber.App {
	app := fiber.New()
	svc := service.NewAddressService(adapters.NewMemoryAddressRepository())
	NewAddressHandler(svc).Register(app)
	return app
}

func TestAddressHandler_CreateAndGet(t *testing.T) {
	app := setupApp()

	body, _ := json.Marshal(domain.Address{
		Name:         "Asha Rao",
		AddressLine1: "12 Temple Road",
		City:         "Mysuru",
		State:        "Karnataka",
		Pincode:      "570001",
		MobileNumber: "9845012345",
	})
	req := httptest.NewRequest(http.MethodPost, "/addresses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Address
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/addresses/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddressHandler_Errors(t *testing.T) {
	app := setupApp()

	t.Run("Invalid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/addresses", bytes.NewReader([]byte(`{"name":"x"}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		raw, _ := io.ReadAll(resp.Body)
		var body server.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Contains(t, body.Error, "invalid address")
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/addresses/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
