package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a grooming product sold in the store.
type Product struct {
	ID          string          `json:"id" validate:"required,notblank,max=255"`
	Name        string          `json:"name" validate:"required,notblank,max=255"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"max=100"`
	InStock     bool            `json:"in_stock"`
}

// CartItem pairs a product snapshot with a quantity. Quantity is always >= 1;
// a quantity of zero means removal and is handled at the cart boundary.
type CartItem struct {
	Product  Product `json:"product" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gte=1"`
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	Name       string `json:"name" validate:"required,notblank,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"max=30"`
	CEP        string `json:"cep" validate:"omitempty,cep"`
	Address    string `json:"address" validate:"max=255"`
	Number     string `json:"number" validate:"max=20"`
	Complement string `json:"complement" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=50"`
}

// OrderStatus is the fulfillment state of an order.
// Transitions are forward-only: pending -> processing -> shipped -> delivered.
// cancelled is reachable from pending and processing only.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// DeliveryMethod selects home delivery or in-store pickup.
type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

// Order is immutable once created; only Status is mutated afterwards,
// by the fulfillment flow.
type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Items          []CartItem      `json:"items"`
	Shipping       ShippingInfo    `json:"shipping"`
	Subtotal       decimal.Decimal `json:"subtotal"` // post-discount
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  string          `json:"payment_method"`
	Date           time.Time       `json:"date"`
	Status         OrderStatus     `json:"status"`
	DeliveryMethod DeliveryMethod  `json:"delivery_method"`
}

// CartTotals is the output of the pricing engine.
type CartTotals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TotalItems         int             `json:"total_items"`
}

// PricingRequest is the DTO for POST /api/cart/pricing.
// DiscountPercentage is trusted to be within [0,100]; the validator enforces it.
type PricingRequest struct {
	Items              []CartItem `json:"items" validate:"required,min=1,dive"`
	DiscountPercentage int64      `json:"discount_percentage" validate:"gte=0,lte=100"`
}

// CreateOrderRequest is the DTO for POST /api/orders.
type CreateOrderRequest struct {
	UserID         string       `json:"user_id" validate:"required,notblank,max=255"`
	Items          []CartItem   `json:"items" validate:"required,min=1,dive"`
	Shipping       ShippingInfo `json:"shipping" validate:"required"`
	DeliveryMethod string       `json:"delivery_method" validate:"required,oneof=delivery pickup"`
	PaymentMethod  string       `json:"payment_method" validate:"required,notblank,max=100"`
}

// UpdateOrderStatusRequest is the DTO for PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// TrackingStep is one stage of the fulfillment timeline.
type TrackingStep struct {
	Status    string `json:"status"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// TrackingResponse is the projection returned by GET /api/orders/:id/tracking.
type TrackingResponse struct {
	Code   string         `json:"code"`
	Status OrderStatus    `json:"status"`
	Steps  []TrackingStep `json:"steps"`
}
