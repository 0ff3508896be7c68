package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/internal/service"
)

// SubscriptionServiceInterface defines the interface for subscription business logic.
type SubscriptionServiceInterface interface {
	Create(ctx context.Context, userID string, plan model.SubscriptionPlan) (*model.Subscription, error)
	Cancel(ctx context.Context, id string) (*model.Subscription, error)
	GetActiveByUser(ctx context.Context, userID string) (*model.Subscription, error)
	DiscountPercentage(sub *model.Subscription) int64
	RenewalReminder(sub *model.Subscription) model.RenewalReminder
}

// SubscriptionHandler handles HTTP requests for club subscriptions.
type SubscriptionHandler struct {
	service   SubscriptionServiceInterface
	validator *validator.Validate
}

// NewSubscriptionHandler creates a new SubscriptionHandler with the given service and validator.
func NewSubscriptionHandler(svc SubscriptionServiceInterface, v *validator.Validate) *SubscriptionHandler {
	return &SubscriptionHandler{service: svc, validator: v}
}

// Create handles POST /api/subscriptions requests.
func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req model.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	sub, err := h.service.Create(c.Context(), req.UserID, model.SubscriptionPlan(req.Plan))
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "active subscription already exists"})
		}
		log.Error().
			Err(err).
			Str("user_id", req.UserID).
			Str("plan", req.Plan).
			Msg("failed to create subscription")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("subscription_id", sub.ID).
		Str("user_id", sub.UserID).
		Str("plan", string(sub.Plan)).
		Msg("subscription created")

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetByUser handles GET /api/subscriptions/user/:userId requests.
// The response bundles the derived member discount and renewal reminder.
func (h *SubscriptionHandler) GetByUser(c *fiber.Ctx) error {
	sub, err := h.service.GetActiveByUser(c.Context(), c.Params("userId"))
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription not found"})
		}
		log.Error().Err(err).Str("user_id", c.Params("userId")).Msg("failed to get subscription")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(model.SubscriptionResponse{
		Subscription:       sub,
		DiscountPercentage: h.service.DiscountPercentage(sub),
		RenewalReminder:    h.service.RenewalReminder(sub),
	})
}

// Cancel handles POST /api/subscriptions/:id/cancel requests.
func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	sub, err := h.service.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription not found"})
		}
		log.Error().Err(err).Str("subscription_id", c.Params("id")).Msg("failed to cancel subscription")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(sub)
}
