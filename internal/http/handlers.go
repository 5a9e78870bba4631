package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pricefinder/internal/services"
)

// lookupHandler accepts a product name and returns the best-effort
// lookup result. Only the request shape itself can fail the call; a
// pipeline that finds nothing still answers 200 with null fields.
func lookupHandler(c *fiber.Ctx) error {
	var reqBody LookupRequest
	if err := c.BodyParser(&reqBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST_INVALID_JSON",
			Error:   "Bad request, malformed JSON",
		})
	}

	if strings.TrimSpace(reqBody.ProductName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "BAD_REQUEST",
			Error:   "Missing required field 'productName'",
		})
	}

	svc := c.Locals("lookup").(services.LookupService)

	result := svc.Lookup(c.Context(), reqBody.ProductName)

	return c.JSON(result)
}
