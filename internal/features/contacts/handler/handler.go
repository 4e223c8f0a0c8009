package handler

import (
	"errors"
	"net/http"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/server"
	"storefront-api/internal/features/contacts/domain"
	"storefront-api/internal/features/contacts/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ContactHandler handles the contact form and its admin listing.
type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(s ports.ContactService) *ContactHandler {
	return &ContactHandler{service: s}
}

// ContactRequest is the contact form body.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse wraps contact payloads the way the storefront expects them.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *ContactHandler) Register(r fiber.Router) {
	r.Post("/contact", h.Submit)
	r.Get("/admin/contacts", h.List)
	r.Delete("/admin/contacts/:id", h.Delete)
}

// Submit handles POST /contact.
// @Summary Submit the contact form
// @Tags Contacts
// @Accept json
// @Produce json
// @Param contact body ContactRequest true "Message"
// @Success 201 {object} ContactResponse
// @Failure 400 {object} server.ErrorResponse
// @Router /contact [post]
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	contact, err := h.service.Submit(c.UserContext(), domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return h.fail(c, err, "Failed to save contact")
	}
	return c.Status(http.StatusCreated).JSON(ContactResponse{
		Success: true,
		Message: "Contact submitted successfully",
		Data:    contact,
	})
}

// List handles GET /admin/contacts.
// @Summary List contact submissions
// @Tags Contacts
// @Produce json
// @Success 200 {object} ContactResponse
// @Router /admin/contacts [get]
func (h *ContactHandler) List(c *fiber.Ctx) error {
	contacts, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to list contacts")
	}
	return c.JSON(ContactResponse{Success: true, Data: contacts})
}

// Delete handles DELETE /admin/contacts/:id.
// @Summary Delete a contact submission
// @Tags Contacts
// @Param id path string true "Contact ID"
// @Success 200 {object} ContactResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /admin/contacts/{id} [delete]
func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "Failed to delete contact")
	}
	return c.JSON(ContactResponse{Success: true, Message: "Contact deleted successfully"})
}

func (h *ContactHandler) fail(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidContact):
		return server.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrContactNotFound):
		return server.JSONError(c, http.StatusNotFound, "Contact not found")
	}
	logger.FromContext(c.UserContext()).Error(msg, zap.Error(err))
	return server.JSONError(c, http.StatusInternalServerError, "Internal server error")
}
