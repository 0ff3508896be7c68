package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navalhaclub/loyalty-api/internal/model"
)

// RewardRepository provides read access to the reward catalog.
// The catalog is static reference data; the core never writes it.
type RewardRepository struct {
	pool PoolInterface
}

// NewRewardRepository creates a new RewardRepository with the given pool.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// NewRewardRepositoryWithPool creates a new RewardRepository with a custom pool interface.
// This is primarily used for testing.
func NewRewardRepositoryWithPool(pool PoolInterface) *RewardRepository {
	return &RewardRepository{pool: pool}
}

const rewardColumns = `id, name, description, points_cost, category, value, available`

// GetByID retrieves a reward by its ID.
// Returns nil, nil if the reward is not found (service layer handles this).
func (r *RewardRepository) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE id = $1`

	var reward model.Reward
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&reward.ID,
		&reward.Name,
		&reward.Description,
		&reward.PointsCost,
		&reward.Category,
		&reward.Value,
		&reward.Available,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get reward by id %s: %w", id, err)
	}
	return &reward, nil
}

// List returns the full catalog, cheapest rewards first.
func (r *RewardRepository) List(ctx context.Context) ([]model.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards ORDER BY points_cost, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		var reward model.Reward
		if err := rows.Scan(
			&reward.ID,
			&reward.Name,
			&reward.Description,
			&reward.PointsCost,
			&reward.Category,
			&reward.Value,
			&reward.Available,
		); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rewards rows: %w", err)
	}
	return rewards, nil
}
