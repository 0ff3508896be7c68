package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navalhaclub/loyalty-api/internal/model"
)

// SubscriptionRepository provides data access for subscriptions using pgx.
type SubscriptionRepository struct {
	pool PoolInterface
}

// NewSubscriptionRepository creates a new SubscriptionRepository with the given pool.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// NewSubscriptionRepositoryWithPool creates a new SubscriptionRepository with a custom pool interface.
// This is primarily used for testing.
func NewSubscriptionRepositoryWithPool(pool PoolInterface) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, user_id, plan, status, start_date, renewal_date, price`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.StartDate, &s.RenewalDate, &s.Price)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Insert persists a new subscription.
func (r *SubscriptionRepository) Insert(ctx context.Context, sub *model.Subscription) error {
	query := `INSERT INTO subscriptions (id, user_id, plan, status, start_date, renewal_date, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, sub.ID, sub.UserID, sub.Plan, sub.Status, sub.StartDate, sub.RenewalDate, sub.Price)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetByID retrieves a subscription by its ID.
// Returns nil, nil if not found (service layer handles this).
func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription by id %s: %w", id, err)
	}
	return sub, nil
}

// GetActiveByUser retrieves a user's active subscription.
// Returns nil, nil when the user has none.
func (r *SubscriptionRepository) GetActiveByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE user_id = $1 AND status = $2 ORDER BY start_date DESC LIMIT 1`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, userID, model.SubscriptionActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active subscription for user %s: %w", userID, err)
	}
	return sub, nil
}

// UpdateStatus sets the lifecycle status of a subscription.
// Returns false when the subscription doesn't exist.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id string, status model.SubscriptionStatus) (bool, error) {
	query := `UPDATE subscriptions SET status = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("update status for subscription %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
