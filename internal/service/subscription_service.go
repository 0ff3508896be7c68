package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/navalhaclub/loyalty-api/internal/model"
)

// SubscriptionService manages club subscriptions and the member discount.
type SubscriptionService struct {
	repo            SubscriptionRepositoryInterface
	monthlyPrice    decimal.Decimal
	yearlyPrice     decimal.Decimal
	discountPercent int64
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepositoryInterface, monthlyPrice, yearlyPrice decimal.Decimal, discountPercent int64) *SubscriptionService {
	return &SubscriptionService{
		repo:            repo,
		monthlyPrice:    monthlyPrice,
		yearlyPrice:     yearlyPrice,
		discountPercent: discountPercent,
	}
}

// Create starts a subscription for a user.
// Returns ErrSubscriptionExists if the user already has an active one.
func (s *SubscriptionService) Create(ctx context.Context, userID string, plan model.SubscriptionPlan) (*model.Subscription, error) {
	existing, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active subscription: %w", err)
	}
	if existing != nil {
		return nil, ErrSubscriptionExists
	}

	now := time.Now().UTC()
	price := s.monthlyPrice
	renewal := now.AddDate(0, 1, 0)
	if plan == model.PlanYearly {
		price = s.yearlyPrice
		renewal = now.AddDate(1, 0, 0)
	}

	sub := &model.Subscription{
		ID:          uuid.NewString(),
		UserID:      userID,
		Plan:        plan,
		Status:      model.SubscriptionActive,
		StartDate:   now,
		RenewalDate: renewal,
		Price:       price,
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	return sub, nil
}

// Cancel marks a subscription as cancelled.
// Returns ErrSubscriptionNotFound if it doesn't exist.
func (s *SubscriptionService) Cancel(ctx context.Context, id string) (*model.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.SubscriptionCancelled)
	if err != nil {
		return nil, fmt.Errorf("update subscription status: %w", err)
	}
	if !updated {
		return nil, ErrSubscriptionNotFound
	}

	sub.Status = model.SubscriptionCancelled
	return sub, nil
}

// GetActiveByUser returns a user's active subscription.
// Returns ErrSubscriptionNotFound when there is none.
func (s *SubscriptionService) GetActiveByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// DiscountPercentage returns the flat storefront discount a subscription grants.
func (s *SubscriptionService) DiscountPercentage(sub *model.Subscription) int64 {
	if sub != nil && sub.Status == model.SubscriptionActive {
		return s.discountPercent
	}
	return 0
}

// RenewalReminder reports whether a renewal notice should be shown:
// within seven days of the renewal date, but not after it has passed.
func (s *SubscriptionService) RenewalReminder(sub *model.Subscription) model.RenewalReminder {
	if sub == nil || sub.Status != model.SubscriptionActive {
		return model.RenewalReminder{}
	}

	daysUntil := int(math.Ceil(time.Until(sub.RenewalDate).Hours() / 24))
	return model.RenewalReminder{
		Show:      daysUntil <= 7 && daysUntil > 0,
		DaysUntil: daysUntil,
	}
}
