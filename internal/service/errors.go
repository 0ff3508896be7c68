package service

import "errors"

var (
	// ErrProfileNotFound is returned when a loyalty profile does not exist for a user
	ErrProfileNotFound = errors.New("loyalty profile not found")

	// ErrInvalidPoints is returned when a points amount is zero or negative
	ErrInvalidPoints = errors.New("points must be positive")

	// ErrInsufficientPoints is returned when a spend would overdraw the available balance
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrRewardNotFound is returned when a reward cannot be found in the catalog
	ErrRewardNotFound = errors.New("reward not found")

	// ErrRewardUnavailable is returned when a reward is flagged unavailable
	ErrRewardUnavailable = errors.New("reward not available")

	// ErrEmptyCart is returned when checkout is attempted with no items
	ErrEmptyCart = errors.New("cart is empty")

	// ErrShippingUnresolved is returned when a delivery order has no resolvable shipping cost
	ErrShippingUnresolved = errors.New("shipping cost could not be resolved")

	// ErrOrderNotFound is returned when an order cannot be found
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidStatusTransition is returned when a status update goes backwards
	// or leaves a terminal state
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrSubscriptionExists is returned when a user already has an active subscription
	ErrSubscriptionExists = errors.New("active subscription already exists")

	// ErrSubscriptionNotFound is returned when a subscription cannot be found
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrAppointmentNotFound is returned when an appointment cannot be found
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAppointmentNotCompleted is returned when rating an appointment that
	// has not been completed yet
	ErrAppointmentNotCompleted = errors.New("appointment not completed")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
