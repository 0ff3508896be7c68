package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan is the billing cadence of a club subscription.
type SubscriptionPlan string

const (
	PlanMonthly SubscriptionPlan = "monthly"
	PlanYearly  SubscriptionPlan = "yearly"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription grants an active member a flat storefront discount.
type Subscription struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Plan        SubscriptionPlan   `json:"plan"`
	Status      SubscriptionStatus `json:"status"`
	StartDate   time.Time          `json:"start_date"`
	RenewalDate time.Time          `json:"renewal_date"`
	Price       decimal.Decimal    `json:"price"`
}

// RenewalReminder tells the client whether to surface a renewal notice.
type RenewalReminder struct {
	Show      bool `json:"show"`
	DaysUntil int  `json:"days_until"`
}

// CreateSubscriptionRequest is the DTO for POST /api/subscriptions.
type CreateSubscriptionRequest struct {
	UserID string `json:"user_id" validate:"required,notblank,max=255"`
	Plan   string `json:"plan" validate:"required,oneof=monthly yearly"`
}

// SubscriptionResponse bundles the subscription with derived club benefits.
type SubscriptionResponse struct {
	Subscription       *Subscription   `json:"subscription"`
	DiscountPercentage int64           `json:"discount_percentage"`
	RenewalReminder    RenewalReminder `json:"renewal_reminder"`
}
