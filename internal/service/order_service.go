package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/pkg/database"
)

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (bool, error)
}

// SubscriptionRepositoryInterface defines the interface for subscription data access.
type SubscriptionRepositoryInterface interface {
	Insert(ctx context.Context, sub *model.Subscription) error
	GetByID(ctx context.Context, id string) (*model.Subscription, error)
	GetActiveByUser(ctx context.Context, userID string) (*model.Subscription, error)
	UpdateStatus(ctx context.Context, id string, status model.SubscriptionStatus) (bool, error)
}

// PointsAwarder awards loyalty points inside an existing transaction.
// Implemented by LoyaltyService.
type PointsAwarder interface {
	EarnInTx(ctx context.Context, tx database.TxQuerier, userID string, points int64, description, relatedID string) error
}

// Brazilian postal code, with or without the dash.
var cepPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// orderTransitions is the forward-only fulfillment state machine.
// cancelled is reachable from pending and processing only.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusDelivered},
	model.OrderStatusDelivered:  {},
	model.OrderStatusCancelled:  {},
}

// OrderService assembles orders at checkout and drives fulfillment.
type OrderService struct {
	pool            TxBeginner
	orderRepo       OrderRepositoryInterface
	subRepo         SubscriptionRepositoryInterface
	awarder         PointsAwarder
	shippingFee     decimal.Decimal
	discountPercent int64
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool *pgxpool.Pool, orderRepo OrderRepositoryInterface, subRepo SubscriptionRepositoryInterface, awarder PointsAwarder, shippingFee decimal.Decimal, discountPercent int64) *OrderService {
	return &OrderService{
		pool:            pool,
		orderRepo:       orderRepo,
		subRepo:         subRepo,
		awarder:         awarder,
		shippingFee:     shippingFee,
		discountPercent: discountPercent,
	}
}

// NewOrderServiceWithTxBeginner creates an OrderService with a custom TxBeginner.
// Primarily used for testing.
func NewOrderServiceWithTxBeginner(pool TxBeginner, orderRepo OrderRepositoryInterface, subRepo SubscriptionRepositoryInterface, awarder PointsAwarder, shippingFee decimal.Decimal, discountPercent int64) *OrderService {
	return &OrderService{
		pool:            pool,
		orderRepo:       orderRepo,
		subRepo:         subRepo,
		awarder:         awarder,
		shippingFee:     shippingFee,
		discountPercent: discountPercent,
	}
}

// CreateOrder transforms a priced cart plus delivery and payment choices into
// an immutable pending order, then awards one loyalty point per whole currency
// unit of the total (floor, never rounded up). Order insert and point accrual
// commit in a single transaction; if persistence fails no points are awarded.
// Returns:
//   - ErrEmptyCart if the cart has no items
//   - ErrShippingUnresolved if delivery was chosen without a valid postal code
//   - ErrProfileNotFound if the buyer has no loyalty profile
func (s *OrderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.Order, error) {
	// Defense-in-depth: check even though the handler validates
	if req == nil || req.UserID == "" || req.PaymentMethod == "" {
		return nil, ErrInvalidRequest
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	deliveryMethod := model.DeliveryMethod(req.DeliveryMethod)
	shippingCost := decimal.Zero
	if deliveryMethod == model.DeliveryMethodDelivery {
		// Flat-fee lookup keyed by postal code validity stands in for a
		// carrier quote service.
		if !cepPattern.MatchString(strings.TrimSpace(req.Shipping.CEP)) {
			return nil, ErrShippingUnresolved
		}
		shippingCost = s.shippingFee
	}

	discount := int64(0)
	sub, err := s.subRepo.GetActiveByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get active subscription: %w", err)
	}
	if sub != nil {
		discount = s.discountPercent
	}

	totals := ComputeCartTotals(req.Items, discount)

	order := &model.Order{
		ID:             newOrderID(),
		UserID:         req.UserID,
		Items:          req.Items,
		Shipping:       req.Shipping,
		Subtotal:       totals.DiscountedSubtotal,
		ShippingCost:   shippingCost,
		Total:          totals.DiscountedSubtotal.Add(shippingCost),
		PaymentMethod:  req.PaymentMethod,
		Date:           time.Now().UTC(),
		Status:         model.OrderStatusPending,
		DeliveryMethod: deliveryMethod,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.orderRepo.Insert(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	// Points accrue strictly after the order insert, never before.
	points := order.Total.IntPart()
	if points > 0 {
		description := fmt.Sprintf("Purchase of R$ %s", order.Total.StringFixed(2))
		if err := s.awarder.EarnInTx(ctx, tx, req.UserID, points, description, order.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser returns all orders placed by a user, most recent first.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// UpdateStatus advances an order through the fulfillment state machine.
// Returns ErrInvalidStatusTransition for backwards or terminal moves.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !updated {
		return nil, ErrOrderNotFound
	}

	order.Status = status
	return order, nil
}

// Track projects an order onto a fulfillment timeline for the tracking page.
func (s *OrderService) Track(ctx context.Context, id string) (*model.TrackingResponse, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	shipped := order.Status == model.OrderStatusShipped || order.Status == model.OrderStatusDelivered
	delivered := order.Status == model.OrderStatusDelivered

	return &model.TrackingResponse{
		Code:   order.ID,
		Status: order.Status,
		Steps: []model.TrackingStep{
			{Status: "Order received", Date: order.Date.Format("02/01/2006"), Completed: true},
			{Status: "Being prepared", Date: "-", Completed: order.Status != model.OrderStatusPending && order.Status != model.OrderStatusCancelled},
			{Status: "On the way", Date: "-", Completed: shipped},
			{Status: "Out for delivery", Date: "-", Completed: delivered},
			{Status: "Delivered", Date: "-", Completed: delivered},
		},
	}, nil
}

// newOrderID generates a unique order identifier with the storefront prefix.
func newOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "PED-" + suffix
}
