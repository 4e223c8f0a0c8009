package handler

import (
	"errors"
	"net/http"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/server"
	"storefront-api/internal/features/addresses/domain"
	"storefront-api/internal/features/addresses/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AddressHandler handles HTTP requests for addresses.
type AddressHandler struct {
	service ports.AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service ports.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// Register mounts the address routes.
func (h *AddressHandler) Register(r fiber.Router) {
	r.Post("/addresses", h.Create)
	r.Get("/addresses", h.ListByCustomer)
	r.Get("/addresses/:id", h.Get)
}

// Create handles POST /addresses.
// @Summary Create an address
// @Tags Addresses
// @Accept json
// @Produce json
// @Param address body domain.Address true "Address"
// @Success 201 {object} domain.Address
// @Failure 400 {object} server.ErrorResponse
// @Router /addresses [post]
func (h *AddressHandler) Create(c *fiber.Ctx) error {
	var req domain.Address
	if err := c.BodyParser(&req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	a, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(a)
}

// Get handles GET /addresses/:id.
// @Summary Get an address
// @Tags Addresses
// @Produce json
// @Param id path string true "Address ID"
// @Success 200 {object} domain.Address
// @Failure 404 {object} server.ErrorResponse
// @Router /addresses/{id} [get]
func (h *AddressHandler) Get(c *fiber.Ctx) error {
	a, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(a)
}

// ListByCustomer handles GET /addresses?customerId=.
// @Summary List a customer's addresses
// @Tags Addresses
// @Produce json
// @Param customerId query string true "Customer ID"
// @Success 200 {array} domain.Address
// @Failure 400 {object} server.ErrorResponse
// @Router /addresses [get]
func (h *AddressHandler) ListByCustomer(c *fiber.Ctx) error {
	list, err := h.service.ListByCustomer(c.UserContext(), c.Query("customerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *AddressHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return server.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAddressNotFound):
		return server.JSONError(c, http.StatusNotFound, "Address not found")
	}
	logger.FromContext(c.UserContext()).Error("Address request failed", zap.Error(err))
	return server.JSONError(c, http.StatusInternalServerError, "Internal server error")
}
