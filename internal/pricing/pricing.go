package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kofiasare/sewshop-backend/pkg/config"
)

// TaxCalculator owns tax rules. Consumers treat the result as opaque; the
// cart fold never second-guesses it.
type TaxCalculator interface {
	Tax(subtotal decimal.Decimal) decimal.Decimal
}

// ShippingCalculator owns the shipping fee rules.
type ShippingCalculator interface {
	Shipping(subtotal decimal.Decimal, itemCount int) decimal.Decimal
}

// FlatRate implements both calculators from static configuration.
type FlatRate struct {
	ratePercent   decimal.Decimal
	flatFee       decimal.Decimal
	freeThreshold decimal.Decimal
}

// NewFlatRate parses the configured rates.
func NewFlatRate(cfg config.PricingConfig) (*FlatRate, error) {
	rate, err := decimal.NewFromString(cfg.TaxRatePercent)
	if err != nil {
		return nil, fmt.Errorf("parse tax rate %q: %w", cfg.TaxRatePercent, err)
	}
	fee, err := decimal.NewFromString(cfg.FlatShippingFee)
	if err != nil {
		return nil, fmt.Errorf("parse shipping fee %q: %w", cfg.FlatShippingFee, err)
	}
	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return nil, fmt.Errorf("parse free shipping threshold %q: %w", cfg.FreeShippingThreshold, err)
	}
	if rate.IsNegative() || fee.IsNegative() || threshold.IsNegative() {
		return nil, fmt.Errorf("pricing rates must be non-negative")
	}
	return &FlatRate{ratePercent: rate, flatFee: fee, freeThreshold: threshold}, nil
}

// Tax applies the flat percentage, rounded to two decimal places.
func (f *FlatRate) Tax(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.IsNegative() || subtotal.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(f.ratePercent).Div(decimal.NewFromInt(100)).Round(2)
}

// Shipping returns the flat fee, waived for empty carts and above the
// free-shipping threshold when one is configured.
func (f *FlatRate) Shipping(subtotal decimal.Decimal, itemCount int) decimal.Decimal {
	if itemCount <= 0 {
		return decimal.Zero
	}
	if f.freeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(f.freeThreshold) {
		return decimal.Zero
	}
	return f.flatFee
}
