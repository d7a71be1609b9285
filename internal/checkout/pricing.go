package checkout

import (
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/shopspring/decimal"
)

// Line item names shown on the hosted payment page.
const (
	LineItemCartItems        = "Cart Items"
	LineItemStandardShipping = "Standard Shipping"
)

var hundred = decimal.NewFromInt(100)

// Pricing converts store prices into settlement-currency minor units.
type Pricing struct {
	Currency         string
	ExchangeRate     decimal.Decimal
	StandardShipping decimal.Decimal
}

// ToMinorUnits returns round(amount × rate × 100), half away from zero.
func ToMinorUnits(amount, rate decimal.Decimal) int64 {
	return amount.Mul(rate).Mul(hundred).Round(0).IntPart()
}

// LineItems prices the cart subtotal and the flat shipping fee as two lines.
func (p Pricing) LineItems(c *cart.Cart) []PaymentLineItem {
	return []PaymentLineItem{
		{
			Name:                 LineItemCartItems,
			UnitAmountMinorUnits: ToMinorUnits(c.Subtotal(), p.ExchangeRate),
			Quantity:             1,
		},
		{
			Name:                 LineItemStandardShipping,
			UnitAmountMinorUnits: ToMinorUnits(p.StandardShipping, p.ExchangeRate),
			Quantity:             1,
		},
	}
}
