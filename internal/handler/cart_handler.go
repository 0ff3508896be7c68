package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/internal/service"
)

// CartHandler handles HTTP requests for cart pricing.
// Pricing is a pure computation, so the handler calls the engine directly.
type CartHandler struct {
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given validator.
func NewCartHandler(v *validator.Validate) *CartHandler {
	return &CartHandler{validator: v}
}

// Pricing handles POST /api/cart/pricing requests.
// The discount percentage comes from the caller's subscription state;
// the validator enforces the [0,100] precondition.
func (h *CartHandler) Pricing(c *fiber.Ctx) error {
	var req model.PricingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	return c.JSON(service.ComputeCartTotals(req.Items, req.DiscountPercentage))
}
