package handler

import (
	"errors"
	"net/http"

	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/server"
	"storefront-api/internal/features/banners/domain"
	"storefront-api/internal/features/banners/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BannerHandler handles HTTP requests for banners.
type BannerHandler struct {
	service ports.BannerService
}

// NewBannerHandler creates a new BannerHandler.
func NewBannerHandler(service ports.BannerService) *BannerHandler {
	return &BannerHandler{
		service: service,
	}
}

// CreateBannerRequest represents the request body for creating a banner.
type CreateBannerRequest struct {
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	Desc          string `json:"desc"`
	Image         string `json:"image"`
	Status        bool   `json:"status"`
	TitleColor    string `json:"titleColor"`
	SubtitleColor string `json:"subtitleColor"`
	DescColor     string `json:"descColor"`
}

// StatusResponse is returned after a toggle.
type StatusResponse struct {
	Status bool `json:"status"`
}

// Register mounts the banner routes.
func (h *BannerHandler) Register(r fiber.Router) {
	r.Get("/banners", h.List)
	r.Post("/banners", h.Create)
	r.Patch("/banners/:id/status", h.ToggleStatus)
	r.Delete("/banners/:id", h.Delete)
}

// List handles GET /banners.
// @Summary List banners
// @Description Returns every banner, newest first.
// @Tags Banner
// @Produce json
// @Success 200 {array} domain.Banner
// @Failure 500 {object} server.ErrorResponse
// @Router /banners [get]
func (h *BannerHandler) List(c *fiber.Ctx) error {
	banners, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to fetch banners")
	}
	return c.Status(http.StatusOK).JSON(banners)
}

// Create handles POST /banners.
// @Summary Create a banner
// @Tags Banner
// @Accept json
// @Produce json
// @Param banner body CreateBannerRequest true "Banner details"
// @Success 201 {object} domain.Banner
// @Failure 400 {object} server.ErrorResponse
// @Router /banners [post]
func (h *BannerHandler) Create(c *fiber.Ctx) error {
	var req CreateBannerRequest
	if err := c.BodyParser(&req); err != nil {
		return server.JSONError(c, http.StatusBadRequest, "Invalid request body")
	}

	banner, err := h.service.Create(c.UserContext(), domain.Banner{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Desc:          req.Desc,
		Image:         req.Image,
		Status:        req.Status,
		TitleColor:    req.TitleColor,
		SubtitleColor: req.SubtitleColor,
		DescColor:     req.DescColor,
	})
	if err != nil {
		return h.fail(c, err, "Failed to create banner")
	}
	return c.Status(http.StatusCreated).JSON(banner)
}

// ToggleStatus handles PATCH /banners/:id/status.
// @Summary Toggle banner visibility
// @Tags Banner
// @Produce json
// @Param id path string true "Banner ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /banners/{id}/status [patch]
func (h *BannerHandler) ToggleStatus(c *fiber.Ctx) error {
	status, err := h.service.ToggleStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to update status")
	}
	return c.JSON(StatusResponse{Status: status})
}

// Delete handles DELETE /banners/:id.
// @Summary Delete a banner
// @Tags Banner
// @Param id path string true "Banner ID"
// @Success 204
// @Failure 404 {object} server.ErrorResponse
// @Router /banners/{id} [delete]
func (h *BannerHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err, "Failed to delete banner")
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *BannerHandler) fail(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidBanner):
		return server.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrBannerNotFound):
		return server.JSONError(c, http.StatusNotFound, "Banner not found")
	}
	logger.FromContext(c.UserContext()).Error(msg, zap.Error(err))
	return server.JSONError(c, http.StatusInternalServerError, "Internal server error")
}
