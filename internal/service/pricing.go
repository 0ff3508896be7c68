package service

import (
	"github.com/shopspring/decimal"

	"github.com/navalhaclub/loyalty-api/internal/model"
)

// DiscountedPrice applies a flat percentage discount to a unit price.
// Precondition: discountPercentage is within [0,100]; the caller validates.
func DiscountedPrice(price decimal.Decimal, discountPercentage int64) decimal.Decimal {
	factor := decimal.NewFromInt(100 - discountPercentage).Div(decimal.NewFromInt(100))
	return price.Mul(factor)
}

// ComputeCartTotals prices a cart under a flat percentage discount.
// The discount is applied per line item and summed, then both aggregates are
// rounded to cents and the discount amount derived from them, so
// DiscountedSubtotal + DiscountAmount == Subtotal exactly.
func ComputeCartTotals(items []model.CartItem, discountPercentage int64) model.CartTotals {
	subtotal := decimal.Zero
	discounted := decimal.Zero
	totalItems := 0

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.Product.Price.Mul(qty))
		discounted = discounted.Add(DiscountedPrice(item.Product.Price, discountPercentage).Mul(qty))
		totalItems += item.Quantity
	}

	subtotal = subtotal.Round(2)
	discounted = discounted.Round(2)

	return model.CartTotals{
		Subtotal:           subtotal,
		DiscountedSubtotal: discounted,
		DiscountAmount:     subtotal.Sub(discounted),
		TotalItems:         totalItems,
	}
}
