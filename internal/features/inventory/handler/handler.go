package handler

import (
	"errors"
	"net/http"
	"net/url"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/server"
	"storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/inventory/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service ports.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Images      []string         `json:"images"`
	Stock       int              `json:"stock"`
	Variants    []domain.Variant `json:"variants"`
}

// RestockRequest represents the request body for setting stock.
type RestockRequest struct {
	Stock *int `json:"stock"`
}

// UpdateProductRequest represents a partial product update. Omitted fields are kept.
type UpdateProductRequest struct {
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Images      []string         `json:"images"`
	Stock       *int             `json:"stock"`
	Variants    []domain.Variant `json:"variants"`
}

// Register mounts the product routes.
func (h *ProductHandler) Register(r fiber.Router) {
	r.Get("/products", h.List)
	r.Get("/products/name/:name", h.GetByName)
	r.Get("/products/:id", h.Get)
	r.Post("/products", h.Create)
	r.Put("/products/:id/stock", h.Restock)
	r.Put("/products/:id", h.Update)
	r.Delete("/products/:id", h.Delete)
}

// Create handles POST /products.
// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Param product body CreateProductRequest true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	p, err := h.service.Create(c.UserContext(), ports.CreateProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Images:      req.Images,
		Stock:       req.Stock,
		Variants:    req.Variants,
	})
	if err != nil {
		return h.fail(c, err, "Failed to create product")
	}
	return c.Status(http.StatusCreated).JSON(p)
}

// List handles GET /products.
// @Summary List products
// @Tags Products
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 500 {object} server.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to list products")
	}
	return c.JSON(products)
}

// Get handles GET /products/:id.
// @Summary Get a product by id
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to get product")
	}
	return c.JSON(p)
}

// GetByName handles GET /products/name/:name.
// @Summary Get a product by its unique name
// @Tags Products
// @Produce json
// @Param name path string true "Product name"
// @Success 200 {object} domain.Product
// @Failure 404 {object} server.ErrorResponse
// @Router /products/name/{name} [get]
func (h *ProductHandler) GetByName(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid product name")
	}

	p, err := h.service.GetByName(c.UserContext(), name)
	if err != nil {
		return h.fail(c, err, "Failed to get product")
	}
	return c.JSON(p)
}

// Restock handles PUT /products/:id/stock.
// @Summary Set available stock
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param body body RestockRequest true "New stock"
// @Success 200 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id}/stock [put]
func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	var req RestockRequest
	if err := c.BodyParser(&req); err != nil || req.Stock == nil {
		return server.JSONError(c, http.StatusBadRequest, "stock is required")
	}

	p, err := h.service.Restock(c.UserContext(), c.Params("id"), *req.Stock)
	if err != nil {
		return h.fail(c, err, "Failed to restock product")
	}
	return c.JSON(p)
}

// Update handles PUT /products/:id.
// @Summary Update a product
// @Description The product name cannot be changed.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body UpdateProductRequest true "Fields to change"
// @Success 200 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	p, err := h.service.Update(c.UserContext(), c.Params("id"), domain.ProductPatch{
		Category:    req.Category,
		Description: req.Description,
		Images:      req.Images,
		Stock:       req.Stock,
		Variants:    req.Variants,
	})
	if err != nil {
		return h.fail(c, err, "Failed to update product")
	}
	return c.JSON(p)
}

// Delete handles DELETE /products/:id.
// @Summary Delete a product
// @Tags Products
// @Param id path string true "Product ID"
// @Success 204
// @Failure 404 {object} server.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "Failed to delete product")
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *ProductHandler) fail(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return server.JSONError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrInvalidProduct):
		return server.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateProduct):
		return server.JSONError(c, http.StatusConflict, err.Error())
	}

	logger.FromContext(c.UserContext()).Error(msg, zap.Error(err))
	return server.JSONError(c, http.StatusInternalServerError, "Internal server error")
}
