package server

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Error is the error description.
	Error string `json:"error"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	rayID, ok := c.Locals("requestid").(string)
	if !ok || rayID == "" {
		return "unknown"
	}
	return rayID
}

// JSONError writes an ErrorResponse with status.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: msg,
		RayID: RayID(c),
	})
}
