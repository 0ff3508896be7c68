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

// LoyaltyServiceInterface defines the interface for loyalty business logic.
type LoyaltyServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*model.LoyaltyProfile, error)
	GetNextTier(ctx context.Context, userID string) (*model.NextTier, error)
	AddPoints(ctx context.Context, userID string, points int64, description, relatedID string) (*model.LoyaltyProfile, error)
	SpendPoints(ctx context.Context, userID string, points int64, description, relatedID string) (*model.LoyaltyProfile, error)
	RedeemReward(ctx context.Context, userID, rewardID string) (*model.RedeemedReward, error)
	ListRewards(ctx context.Context) ([]model.Reward, error)
}

// LoyaltyHandler handles HTTP requests for the points ledger and rewards.
type LoyaltyHandler struct {
	service   LoyaltyServiceInterface
	validator *validator.Validate
}

// NewLoyaltyHandler creates a new LoyaltyHandler with the given service and validator.
func NewLoyaltyHandler(svc LoyaltyServiceInterface, v *validator.Validate) *LoyaltyHandler {
	return &LoyaltyHandler{service: svc, validator: v}
}

// GetProfile handles GET /api/loyalty/:userId requests.
// Creates an empty bronze profile on first access.
func (h *LoyaltyHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: user id is required"})
	}

	profile, err := h.service.GetProfile(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get loyalty profile")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(profile)
}

// GetNextTier handles GET /api/loyalty/:userId/next-tier requests.
// Responds with JSON null when the user is already at the highest tier.
func (h *LoyaltyHandler) GetNextTier(c *fiber.Ctx) error {
	userID := c.Params("userId")

	next, err := h.service.GetNextTier(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "loyalty profile not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get next tier")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(next)
}

// EarnPoints handles POST /api/loyalty/:userId/points/earn requests.
func (h *LoyaltyHandler) EarnPoints(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var req model.EarnPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	profile, err := h.service.AddPoints(c.Context(), userID, req.Points, req.Description, req.RelatedID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "loyalty profile not found"})
		}
		if errors.Is(err, service.ErrInvalidPoints) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "points must be positive"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", userID).
			Int64("points", req.Points).
			Msg("failed to add points")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("user_id", userID).
		Int64("points", req.Points).
		Str("tier", string(profile.Points.Tier)).
		Msg("points added")

	return c.JSON(profile)
}

// SpendPoints handles POST /api/loyalty/:userId/points/spend requests.
// An overdraw is a recoverable failure reported as success=false, not an error.
func (h *LoyaltyHandler) SpendPoints(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var req model.SpendPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	profile, err := h.service.SpendPoints(c.Context(), userID, req.Points, req.Description, req.RelatedID)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientPoints) {
			return c.Status(fiber.StatusBadRequest).JSON(model.SpendPointsResponse{
				Success: false,
				Error:   "insufficient points",
			})
		}
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "loyalty profile not found"})
		}
		if errors.Is(err, service.ErrInvalidPoints) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "points must be positive"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", userID).
			Int64("points", req.Points).
			Msg("failed to spend points")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(model.SpendPointsResponse{Success: true, Profile: profile})
}

// RedeemReward handles POST /api/loyalty/:userId/rewards/:rewardId/redeem requests.
func (h *LoyaltyHandler) RedeemReward(c *fiber.Ctx) error {
	userID := c.Params("userId")
	rewardID := c.Params("rewardId")

	redemption, err := h.service.RedeemReward(c.Context(), userID, rewardID)
	if err != nil {
		if errors.Is(err, service.ErrRewardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "reward not found"})
		}
		if errors.Is(err, service.ErrRewardUnavailable) {
			return c.Status(fiber.StatusBadRequest).JSON(model.RedeemRewardResponse{
				Success: false,
				Error:   "reward not available",
			})
		}
		if errors.Is(err, service.ErrInsufficientPoints) {
			return c.Status(fiber.StatusBadRequest).JSON(model.RedeemRewardResponse{
				Success: false,
				Error:   "insufficient points",
			})
		}
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "loyalty profile not found"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("user_id", userID).
			Str("reward_id", rewardID).
			Msg("failed to redeem reward")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("user_id", userID).
		Str("reward_id", rewardID).
		Str("code", redemption.Code).
		Msg("reward redeemed")

	return c.JSON(model.RedeemRewardResponse{Success: true, Code: redemption.Code})
}

// ListRewards handles GET /api/rewards requests.
func (h *LoyaltyHandler) ListRewards(c *fiber.Ctx) error {
	rewards, err := h.service.ListRewards(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list rewards")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(rewards)
}
