package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/pkg/database"
)

// ProfileRepositoryInterface defines the interface for loyalty profile data access.
type ProfileRepositoryInterface interface {
	Get(ctx context.Context, userID string) (*model.LoyaltyProfile, error)
	Create(ctx context.Context, userID string, joinedAt time.Time) error
	GetForUpdate(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error)
	UpdateBalance(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error
	InsertTransaction(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error
	InsertRedemption(ctx context.Context, tx database.TxQuerier, userID string, redemption *model.RedeemedReward) error
	ListTransactions(ctx context.Context, userID string) ([]model.PointsTransaction, error)
	ListRedemptions(ctx context.Context, userID string) ([]model.RedeemedReward, error)
}

// RewardRepositoryInterface defines the interface for reward catalog access.
type RewardRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Reward, error)
	List(ctx context.Context) ([]model.Reward, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TierThresholds holds the minimum lifetime points for each tier above bronze.
type TierThresholds struct {
	Silver   int64
	Gold     int64
	Platinum int64
}

// LoyaltyService maintains the points ledger and handles reward redemption.
// Every balance mutation locks the profile row and commits the ledger entry
// and the balance update in a single transaction, so the
// available = total - spent invariant holds under concurrent requests.
type LoyaltyService struct {
	pool               TxBeginner
	profileRepo        ProfileRepositoryInterface
	rewardRepo         RewardRepositoryInterface
	thresholds         TierThresholds
	redemptionValidity time.Duration
}

// NewLoyaltyService creates a new LoyaltyService.
func NewLoyaltyService(pool *pgxpool.Pool, profileRepo ProfileRepositoryInterface, rewardRepo RewardRepositoryInterface, thresholds TierThresholds, redemptionValidity time.Duration) *LoyaltyService {
	return &LoyaltyService{
		pool:               pool,
		profileRepo:        profileRepo,
		rewardRepo:         rewardRepo,
		thresholds:         thresholds,
		redemptionValidity: redemptionValidity,
	}
}

// NewLoyaltyServiceWithTxBeginner creates a LoyaltyService with a custom TxBeginner.
// Primarily used for testing.
func NewLoyaltyServiceWithTxBeginner(pool TxBeginner, profileRepo ProfileRepositoryInterface, rewardRepo RewardRepositoryInterface, thresholds TierThresholds, redemptionValidity time.Duration) *LoyaltyService {
	return &LoyaltyService{
		pool:               pool,
		profileRepo:        profileRepo,
		rewardRepo:         rewardRepo,
		thresholds:         thresholds,
		redemptionValidity: redemptionValidity,
	}
}

// CalculateTier returns the highest tier whose threshold is covered by totalPoints.
// Tier tracks lifetime earnings only, so spending never demotes a member.
func (s *LoyaltyService) CalculateTier(totalPoints int64) model.LoyaltyTier {
	switch {
	case totalPoints >= s.thresholds.Platinum:
		return model.TierPlatinum
	case totalPoints >= s.thresholds.Gold:
		return model.TierGold
	case totalPoints >= s.thresholds.Silver:
		return model.TierSilver
	default:
		return model.TierBronze
	}
}

// NextTier returns the tier above the one earned by totalPoints and the points
// still needed to reach it. Returns nil at platinum. A negative distance
// (misconfigured thresholds) is reported as zero: already qualified.
func (s *LoyaltyService) NextTier(totalPoints int64) *model.NextTier {
	var next model.NextTier
	switch s.CalculateTier(totalPoints) {
	case model.TierBronze:
		next = model.NextTier{Tier: model.TierSilver, PointsNeeded: s.thresholds.Silver - totalPoints}
	case model.TierSilver:
		next = model.NextTier{Tier: model.TierGold, PointsNeeded: s.thresholds.Gold - totalPoints}
	case model.TierGold:
		next = model.NextTier{Tier: model.TierPlatinum, PointsNeeded: s.thresholds.Platinum - totalPoints}
	default:
		return nil
	}
	if next.PointsNeeded < 0 {
		next.PointsNeeded = 0
	}
	return &next
}

// GetProfile returns the full loyalty profile for a user, creating an empty
// bronze profile on first access.
func (s *LoyaltyService) GetProfile(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		if err := s.profileRepo.Create(ctx, userID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		profile, err = s.profileRepo.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get profile after create: %w", err)
		}
		if profile == nil {
			return nil, ErrProfileNotFound
		}
	}

	transactions, err := s.profileRepo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	redemptions, err := s.profileRepo.ListRedemptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}

	profile.Transactions = transactions
	profile.RedeemedRewards = redemptions
	return profile, nil
}

// GetNextTier reports the tier above the user's current one, or nil at platinum.
func (s *LoyaltyService) GetNextTier(ctx context.Context, userID string) (*model.NextTier, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return s.NextTier(profile.Points.Total), nil
}

// ListRewards returns the reward catalog.
func (s *LoyaltyService) ListRewards(ctx context.Context) ([]model.Reward, error) {
	return s.rewardRepo.List(ctx)
}

// AddPoints credits points to a user and recomputes the tier.
// Returns:
//   - ErrInvalidPoints if points <= 0
//   - ErrProfileNotFound if the profile doesn't exist
func (s *LoyaltyService) AddPoints(ctx context.Context, userID string, points int64, description, relatedID string) (*model.LoyaltyProfile, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.EarnInTx(ctx, tx, userID, points, description, relatedID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// EarnInTx appends an earn transaction and updates the balance within an
// existing transaction. Used by AddPoints and by checkout points accrual,
// which must award strictly after the order insert in the same transaction.
func (s *LoyaltyService) EarnInTx(ctx context.Context, tx database.TxQuerier, userID string, points int64, description, relatedID string) error {
	if points <= 0 {
		return ErrInvalidPoints
	}

	profile, err := s.profileRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("get profile for update: %w", err)
	}

	txn := &model.PointsTransaction{
		ID:          uuid.NewString(),
		Type:        model.TransactionEarn,
		Points:      points,
		Description: description,
		RelatedID:   relatedID,
		Date:        time.Now().UTC(),
	}
	if err := s.profileRepo.InsertTransaction(ctx, tx, userID, txn); err != nil {
		return fmt.Errorf("insert earn transaction: %w", err)
	}

	newTotal := profile.Points.Total + points
	newAvailable := profile.Points.Available + points
	newTier := s.CalculateTier(newTotal)
	if err := s.profileRepo.UpdateBalance(ctx, tx, userID, newTotal, newAvailable, profile.Points.Spent, newTier); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

// SpendPoints debits points from a user's available balance.
// The tier is deliberately not recomputed: it reflects lifetime earnings.
// Returns:
//   - ErrInvalidPoints if points <= 0
//   - ErrProfileNotFound if the profile doesn't exist
//   - ErrInsufficientPoints if the available balance is too low (no mutation)
func (s *LoyaltyService) SpendPoints(ctx context.Context, userID string, points int64, description, relatedID string) (*model.LoyaltyProfile, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.spendInTx(ctx, tx, userID, points, description, relatedID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// spendInTx appends a spend transaction and updates the balance within an
// existing transaction. The profile row must end up locked by GetForUpdate
// before the overdraw check, or concurrent spends could both pass it.
func (s *LoyaltyService) spendInTx(ctx context.Context, tx database.TxQuerier, userID string, points int64, description, relatedID string) error {
	profile, err := s.profileRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("get profile for update: %w", err)
	}

	if profile.Points.Available < points {
		return ErrInsufficientPoints
	}

	txn := &model.PointsTransaction{
		ID:          uuid.NewString(),
		Type:        model.TransactionSpend,
		Points:      points,
		Description: description,
		RelatedID:   relatedID,
		Date:        time.Now().UTC(),
	}
	if err := s.profileRepo.InsertTransaction(ctx, tx, userID, txn); err != nil {
		return fmt.Errorf("insert spend transaction: %w", err)
	}

	newAvailable := profile.Points.Available - points
	newSpent := profile.Points.Spent + points
	if err := s.profileRepo.UpdateBalance(ctx, tx, userID, profile.Points.Total, newAvailable, newSpent, profile.Points.Tier); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

// RedeemReward converts points into a claimable reward instance.
// The point debit and the redemption record commit in one transaction:
// either both happen or neither does.
// Returns:
//   - ErrRewardNotFound if the reward is not in the catalog
//   - ErrRewardUnavailable if the reward is flagged unavailable, regardless of balance
//   - ErrProfileNotFound if the profile doesn't exist
//   - ErrInsufficientPoints if the available balance is below the cost
func (s *LoyaltyService) RedeemReward(ctx context.Context, userID, rewardID string) (*model.RedeemedReward, error) {
	reward, err := s.rewardRepo.GetByID(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	if !reward.Available {
		return nil, ErrRewardUnavailable
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	description := "Redemption: " + reward.Name
	if err := s.spendInTx(ctx, tx, userID, reward.PointsCost, description, reward.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	redemption := &model.RedeemedReward{
		ID:         uuid.NewString(),
		RewardID:   reward.ID,
		Reward:     *reward,
		RedeemedAt: now,
		ExpiresAt:  now.Add(s.redemptionValidity),
		Used:       false,
		Code:       newRewardCode(),
	}
	if err := s.profileRepo.InsertRedemption(ctx, tx, userID, redemption); err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return redemption, nil
}

// newRewardCode generates a human-readable redemption code.
// UUID-backed so concurrent redemptions can't collide.
func newRewardCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "REWARD-" + suffix
}
