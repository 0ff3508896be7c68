package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/internal/service"
	"github.com/navalhaclub/loyalty-api/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ProfileRepository provides data access for loyalty profiles using pgx.
type ProfileRepository struct {
	pool PoolInterface
}

// NewProfileRepository creates a new ProfileRepository with the given pool.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// NewProfileRepositoryWithPool creates a new ProfileRepository with a custom pool interface.
// This is primarily used for testing.
func NewProfileRepositoryWithPool(pool PoolInterface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `user_id, total_points, available_points, spent_points, tier, joined_at`

func scanProfile(row pgx.Row) (*model.LoyaltyProfile, error) {
	var p model.LoyaltyProfile
	err := row.Scan(
		&p.UserID,
		&p.Points.Total,
		&p.Points.Available,
		&p.Points.Spent,
		&p.Points.Tier,
		&p.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves the balance section of a profile.
// Returns nil, nil if the profile is not found (service layer handles this).
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*model.LoyaltyProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM loyalty_profiles WHERE user_id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get profile for user %s: %w", userID, err)
	}
	return profile, nil
}

// Create inserts an empty bronze profile. A concurrent lazy-create by another
// request is not an error, so unique violations are swallowed.
func (r *ProfileRepository) Create(ctx context.Context, userID string, joinedAt time.Time) error {
	query := `INSERT INTO loyalty_profiles (user_id, total_points, available_points, spent_points, tier, joined_at)
		VALUES ($1, 0, 0, 0, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, userID, model.TierBronze, joinedAt)
	if err != nil {
		return fmt.Errorf("create profile for user %s: %w", userID, err)
	}
	return nil
}

// GetForUpdate retrieves a profile with a row lock (SELECT FOR UPDATE).
// This serializes balance mutations per user until the transaction completes.
// Returns service.ErrProfileNotFound if the profile doesn't exist.
func (r *ProfileRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, userID string) (*model.LoyaltyProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM loyalty_profiles WHERE user_id = $1 FOR UPDATE`

	profile, err := scanProfile(tx.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile for update %s: %w", userID, err)
	}
	return profile, nil
}

// UpdateBalance writes the new balance and tier for a user.
// Must be called within a transaction after locking the row.
func (r *ProfileRepository) UpdateBalance(ctx context.Context, tx database.TxQuerier, userID string, total, available, spent int64, tier model.LoyaltyTier) error {
	query := `UPDATE loyalty_profiles
		SET total_points = $2, available_points = $3, spent_points = $4, tier = $5
		WHERE user_id = $1`

	_, err := tx.Exec(ctx, query, userID, total, available, spent, tier)
	if err != nil {
		return fmt.Errorf("update balance for user %s: %w", userID, err)
	}
	return nil
}

// InsertTransaction appends a ledger entry within a transaction.
func (r *ProfileRepository) InsertTransaction(ctx context.Context, tx database.TxQuerier, userID string, txn *model.PointsTransaction) error {
	query := `INSERT INTO points_transactions (id, user_id, type, points, description, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`

	_, err := tx.Exec(ctx, query, txn.ID, userID, txn.Type, txn.Points, txn.Description, txn.RelatedID, txn.Date)
	if err != nil {
		return fmt.Errorf("insert points transaction: %w", err)
	}
	return nil
}

// InsertRedemption appends a redeemed reward record within a transaction.
// The reward is snapshotted column by column.
func (r *ProfileRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, userID string, redemption *model.RedeemedReward) error {
	query := `INSERT INTO redeemed_rewards
		(id, user_id, reward_id, reward_name, reward_description, points_cost, category, value, redeemed_at, expires_at, used, code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		redemption.ID, userID, redemption.RewardID,
		redemption.Reward.Name, redemption.Reward.Description, redemption.Reward.PointsCost,
		redemption.Reward.Category, redemption.Reward.Value,
		redemption.RedeemedAt, redemption.ExpiresAt, redemption.Used, redemption.Code)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// ListTransactions returns a user's ledger entries, most recent first.
// On success, returns an empty slice (not nil) when no entries exist.
func (r *ProfileRepository) ListTransactions(ctx context.Context, userID string) ([]model.PointsTransaction, error) {
	query := `SELECT id, type, points, description, COALESCE(related_id, ''), created_at
		FROM points_transactions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	transactions := []model.PointsTransaction{}
	for rows.Next() {
		var t model.PointsTransaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Points, &t.Description, &t.RelatedID, &t.Date); err != nil {
			return nil, fmt.Errorf("scan points transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions rows: %w", err)
	}
	return transactions, nil
}

// ListRedemptions returns a user's redeemed rewards, most recent first.
func (r *ProfileRepository) ListRedemptions(ctx context.Context, userID string) ([]model.RedeemedReward, error) {
	query := `SELECT id, reward_id, reward_name, reward_description, points_cost, category, value, redeemed_at, expires_at, used, code
		FROM redeemed_rewards WHERE user_id = $1 ORDER BY redeemed_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions for user %s: %w", userID, err)
	}
	defer rows.Close()

	redemptions := []model.RedeemedReward{}
	for rows.Next() {
		var rr model.RedeemedReward
		if err := rows.Scan(
			&rr.ID, &rr.RewardID,
			&rr.Reward.Name, &rr.Reward.Description, &rr.Reward.PointsCost,
			&rr.Reward.Category, &rr.Reward.Value,
			&rr.RedeemedAt, &rr.ExpiresAt, &rr.Used, &rr.Code,
		); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		rr.Reward.ID = rr.RewardID
		redemptions = append(redemptions, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redemptions rows: %w", err)
	}
	return redemptions, nil
}
