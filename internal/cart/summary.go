package cart

import (
	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/internal/pricing"
	"github.com/kofiasare/sewshop-backend/pkg/db/models"
)

// Summary is the result of folding every cart line into aggregate totals.
type Summary struct {
	ItemCount   int
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// Fold recomputes the cart totals from scratch. Item count sums quantities,
// subtotal sums line subtotals, and tax and shipping come from their
// calculators unquestioned. Total is always subtotal + tax + shipping.
func Fold(items []models.CartItem, tax pricing.TaxCalculator, shipping pricing.ShippingCalculator) Summary {
	count := 0
	subtotal := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		subtotal = subtotal.Add(ComputeSubtotal(item))
	}

	summary := Summary{
		ItemCount: count,
		Subtotal:  subtotal,
		Tax:       tax.Tax(subtotal),
	}
	summary.ShippingFee = shipping.Shipping(subtotal, count)
	summary.Total = summary.Subtotal.Add(summary.Tax).Add(summary.ShippingFee)
	return summary
}

// Matches reports whether the stored record totals agree with this fold.
// A mismatch is logged and healed, never surfaced as a failure.
func (s Summary) Matches(record *models.CartRecord) bool {
	if record == nil {
		return false
	}
	return record.Subtotal.Equal(s.Subtotal) &&
		record.Tax.Equal(s.Tax) &&
		record.ShippingFee.Equal(s.ShippingFee) &&
		record.Total.Equal(s.Total)
}

// Apply writes the fold onto the record.
func (s Summary) Apply(record *models.CartRecord) {
	record.Subtotal = s.Subtotal
	record.Tax = s.Tax
	record.ShippingFee = s.ShippingFee
	record.Total = s.Total
}
