package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/server"
	inventorydomain "storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/orders/domain"
	"storefront-api/internal/features/orders/ports"
	paymentdomain "storefront-api/internal/features/payments/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders and their payment.
type OrderHandler struct {
	// service is the order orchestrator.
	service ports.OrderService
	// pages are the storefront pages the payment callback redirects to.
	pages config.FrontendConfig
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService, pages config.FrontendConfig) *OrderHandler {
	return &OrderHandler{
		service: s,
		pages:   pages,
	}
}

// PlaceOrderRequest is the checkout body shared by online and COD orders.
type PlaceOrderRequest struct {
	Amount    *decimal.Decimal   `json:"amount"`
	AddressID string             `json:"addressId"`
	Items     []OrderItemRequest `json:"items"`
}

// OrderItemRequest accepts the item shapes storefront clients send.
type OrderItemRequest struct {
	ProductName  string           `json:"productName"`
	Name         string           `json:"name"`
	ProductImage string           `json:"productImage"`
	Image        string           `json:"image"`
	Quantity     int              `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unitPrice"`
	Price        *decimal.Decimal `json:"price"`
}

// StatusRequest is the body of the status update endpoints.
type StatusRequest struct {
	Status     string `json:"status"`
	ItemStatus string `json:"itemStatus"`
}

// Register mounts the order routes. Payment routes go first so that
// /orders/payment/* is not captured by /orders/:id.
func (h *OrderHandler) Register(r fiber.Router) {
	r.Post("/orders/payment/initiate", h.InitiatePayment)
	r.Get("/orders/payment/verify", h.VerifyPayment)
	r.Post("/orders/payment/verify", h.VerifyPayment)

	r.Post("/orders", h.CreateCOD)
	r.Get("/orders", h.List)
	r.Get("/orders/:id", h.Get)
	r.Put("/orders/:id", h.UpdateStatus)
	r.Put("/orders/:id/items/:itemIndex", h.UpdateItemStatus)
	r.Delete("/orders/:id", h.Delete)
}

// InitiatePayment handles POST /orders/payment/initiate.
// @Summary Start an online payment
// @Description Creates a pending order and returns the gateway checkout URL.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body PlaceOrderRequest true "Checkout"
// @Success 200 {object} ports.InitiateResult
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 502 {object} server.ErrorResponse
// @Router /orders/payment/initiate [post]
func (h *OrderHandler) InitiatePayment(c *fiber.Ctx) error {
	input, err := parsePlaceOrder(c)
	if err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.service.InitiateOnlineOrder(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err, "Failed to initiate payment")
	}
	return c.Status(http.StatusOK).JSON(res)
}

// VerifyPayment handles the gateway callback and always redirects.
// @Summary Payment gateway callback
// @Tags Orders
// @Param merchantId query string true "Merchant order id"
// @Success 302
// @Router /orders/payment/verify [get]
// @Router /orders/payment/verify [post]
func (h *OrderHandler) VerifyPayment(c *fiber.Ctx) error {
	merchantID := c.Query("merchantId")
	if merchantID == "" {
		merchantID = c.FormValue("merchantId")
	}

	res := h.service.VerifyOnlinePayment(c.UserContext(), merchantID)

	params := url.Values{}
	if merchantID != "" {
		params.Set("merchantOrderId", merchantID)
	}
	if res.Order != nil && res.Order.CustomerOrderNumber != "" {
		params.Set("orderNumber", res.Order.CustomerOrderNumber)
	}

	target := h.pages.FailureURL
	switch res.Outcome {
	case ports.VerifySuccess:
		target = h.pages.SuccessURL
	case ports.VerifyPending:
		target = h.pages.PendingURL
	default:
		logger.FromContext(c.UserContext()).Warn("Payment verification failed",
			zap.String("merchant_order_id", merchantID),
			zap.String("reason", res.Reason),
		)
	}
	return c.Redirect(withQuery(target, params), http.StatusFound)
}

// CreateCOD handles POST /orders.
// @Summary Place a cash-on-delivery order
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body PlaceOrderRequest true "Checkout"
// @Success 201 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateCOD(c *fiber.Ctx) error {
	input, err := parsePlaceOrder(c)
	if err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.CreateCodOrder(c.UserContext(), input)
	if err != nil {
		return h.fail(c, err, "Failed to create order")
	}
	return c.Status(http.StatusCreated).JSON(order)
}

// List handles GET /orders.
// @Summary List orders
// @Tags Orders
// @Produce json
// @Param status query string false "Order status"
// @Param paymentMode query string false "COD or ONLINE"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	filter := domain.ListFilter{
		Status:      domain.OrderStatus(strings.ToUpper(c.Query("status"))),
		PaymentMode: domain.PaymentMode(strings.ToUpper(c.Query("paymentMode"))),
		Limit:       c.QueryInt("limit"),
		Offset:      c.QueryInt("offset"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return server.JSONError(c, http.StatusBadRequest, "Unknown status filter")
	}

	orders, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err, "Failed to list orders")
	}
	return c.JSON(orders)
}

// Get handles GET /orders/:id.
// @Summary Get an order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to fetch order")
	}
	return c.JSON(order)
}

// UpdateStatus handles PUT /orders/:id.
// @Summary Move an order along its lifecycle
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body StatusRequest true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /orders/{id} [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return server.JSONError(c, http.StatusBadRequest, "status is required")
	}

	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), domain.OrderStatus(strings.ToUpper(req.Status)))
	if err != nil {
		return h.fail(c, err, "Failed to update order status")
	}
	return c.JSON(order)
}

// UpdateItemStatus handles PUT /orders/:id/items/:itemIndex.
// @Summary Set the status of one order line
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param itemIndex path int true "Zero-based item index"
// @Param body body StatusRequest true "New item status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id}/items/{itemIndex} [put]
func (h *OrderHandler) UpdateItemStatus(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("itemIndex"))
	if err != nil || index < 0 {
		return server.JSONError(c, http.StatusBadRequest, "itemIndex must be a non-negative integer")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}
	raw := req.ItemStatus
	if raw == "" {
		raw = req.Status
	}
	status, err := domain.ParseItemStatus(strings.ToUpper(raw))
	if err != nil {
		return h.fail(c, err, "Invalid item status")
	}

	order, err := h.service.UpdateItemStatus(c.UserContext(), c.Params("id"), index, status)
	if err != nil {
		return h.fail(c, err, "Failed to update item status")
	}
	return c.JSON(order)
}

// Delete handles DELETE /orders/:id.
// @Summary Delete an order
// @Tags Orders
// @Param id path string true "Order ID"
// @Success 204
// @Failure 404 {object} server.ErrorResponse
// @Router /orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "Failed to delete order")
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *OrderHandler) fail(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrReferenceNotFound):
		return server.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, inventorydomain.ErrInsufficientStock):
		return server.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return server.JSONError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrItemNotFound):
		return server.JSONError(c, http.StatusNotFound, "Order item not found")
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrStaleState):
		return server.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, paymentdomain.ErrGateway):
		logger.FromContext(c.UserContext()).Error(msg, zap.Error(err))
		return server.JSONError(c, http.StatusBadGateway, "Payment gateway unavailable")
	}

	logger.FromContext(c.UserContext()).Error(msg, zap.Error(err))
	return server.JSONError(c, http.StatusInternalServerError, "Internal server error")
}

func parsePlaceOrder(c *fiber.Ctx) (ports.PlaceOrderInput, error) {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return ports.PlaceOrderInput{}, err
	}

	input := ports.PlaceOrderInput{AddressID: req.AddressID}
	if req.Amount != nil {
		input.Amount = *req.Amount
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, it.toLine())
	}
	return input, nil
}

func (r OrderItemRequest) toLine() domain.LineInput {
	line := domain.LineInput{
		ProductName:  firstNonEmpty(r.ProductName, r.Name),
		ProductImage: firstNonEmpty(r.ProductImage, r.Image),
		Quantity:     r.Quantity,
	}
	switch {
	case r.UnitPrice != nil:
		line.UnitPrice = *r.UnitPrice
	case r.Price != nil:
		line.UnitPrice = *r.Price
	}
	return line
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func withQuery(target string, params url.Values) string {
	u, err := url.Parse(target)
	if err != nil || len(params) == 0 {
		return target
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
