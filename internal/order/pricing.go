package order

import (
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/settings"
)

// Totals holds the money breakdown of an order, computed once at creation
// and never recomputed afterwards.
type Totals struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
}

// Line is one priced order line.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// LineSubtotal is unit price times quantity.
func LineSubtotal(l Line) decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputeTotals prices an order: subtotal is the sum of line subtotals,
// tax applies the configured rate, shipping is waived above the
// free-shipping threshold, discount is zero at creation.
// total = subtotal + tax + shipping - discount.
func ComputeTotals(lines []Line, p settings.Pricing) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(LineSubtotal(l))
	}
	tax := sub.Mul(p.TaxRate).Round(2)
	shipping := p.ShippingCost
	if sub.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	discount := decimal.Zero
	return Totals{
		Subtotal:     sub,
		Tax:          tax,
		ShippingCost: shipping,
		Discount:     discount,
		Total:        sub.Add(tax).Add(shipping).Sub(discount),
	}
}
