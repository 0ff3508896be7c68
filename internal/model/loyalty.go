package model

import "time"

// LoyaltyTier is a loyalty rank derived purely from lifetime earned points.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "bronze"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
)

// TransactionType distinguishes point accruals from point debits.
type TransactionType string

const (
	TransactionEarn  TransactionType = "earn"
	TransactionSpend TransactionType = "spend"
)

// LoyaltyPoints is the balance section of a loyalty profile.
// Available is always Total - Spent; Total and Spent never decrease.
type LoyaltyPoints struct {
	Total     int64       `json:"total"`
	Available int64       `json:"available"`
	Spent     int64       `json:"spent"`
	Tier      LoyaltyTier `json:"tier"`
}

// PointsTransaction is an immutable ledger entry.
type PointsTransaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Points      int64           `json:"points"`
	Description string          `json:"description"`
	RelatedID   string          `json:"related_id,omitempty"`
	Date        time.Time       `json:"date"`
}

// RewardCategory classifies catalog rewards.
type RewardCategory string

const (
	RewardCategoryDiscount RewardCategory = "discount"
	RewardCategoryService  RewardCategory = "service"
	RewardCategoryProduct  RewardCategory = "product"
)

// Reward is a catalog entry. The catalog is read-only reference data.
type Reward struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PointsCost  int64          `json:"points_cost"`
	Category    RewardCategory `json:"category"`
	Value       string         `json:"value"`
	Available   bool           `json:"available"`
}

// RedeemedReward is produced when a reward is redeemed. It snapshots the
// reward at redemption time so later catalog edits don't rewrite history.
type RedeemedReward struct {
	ID         string    `json:"id"`
	RewardID   string    `json:"reward_id"`
	Reward     Reward    `json:"reward"`
	RedeemedAt time.Time `json:"redeemed_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Used       bool      `json:"used"`
	Code       string    `json:"code"`
}

// LoyaltyProfile aggregates a user's balance, ledger and redemptions.
type LoyaltyProfile struct {
	UserID          string              `json:"user_id"`
	Points          LoyaltyPoints       `json:"points"`
	Transactions    []PointsTransaction `json:"transactions"`
	RedeemedRewards []RedeemedReward    `json:"redeemed_rewards"`
	JoinedAt        time.Time           `json:"joined_at"`
}

// NextTier describes the tier above the current one and the distance to it.
type NextTier struct {
	Tier         LoyaltyTier `json:"tier"`
	PointsNeeded int64       `json:"points_needed"`
}

// EarnPointsRequest is the DTO for POST /api/loyalty/:userId/points/earn.
type EarnPointsRequest struct {
	Points      int64  `json:"points" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,notblank,max=255"`
	RelatedID   string `json:"related_id" validate:"max=255"`
}

// SpendPointsRequest is the DTO for POST /api/loyalty/:userId/points/spend.
type SpendPointsRequest struct {
	Points      int64  `json:"points" validate:"required,gt=0"`
	Description string `json:"description" validate:"required,notblank,max=255"`
	RelatedID   string `json:"related_id" validate:"max=255"`
}

// SpendPointsResponse reports the outcome of a spend attempt.
type SpendPointsResponse struct {
	Success bool            `json:"success"`
	Profile *LoyaltyProfile `json:"profile,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RedeemRewardResponse reports the outcome of a redemption attempt.
type RedeemRewardResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}
