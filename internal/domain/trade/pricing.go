package trade

import "github.com/shopspring/decimal"

// Storefront checkout defaults: flat shipping below the free-shipping
// threshold plus VAT on the subtotal.
var (
	DefaultShippingFee      = decimal.NewFromInt(30000)
	DefaultFreeShippingOver = decimal.NewFromInt(500000)
	DefaultTaxRate          = decimal.RequireFromString("0.10")
)

// PricingRules turns a cart subtotal into the amount charged at checkout.
// The zero value charges the bare subtotal.
type PricingRules struct {
	ShippingFee      decimal.Decimal
	FreeShippingOver decimal.Decimal
	TaxRate          decimal.Decimal
}

// DefaultPricingRules returns the shop's standard shipping and VAT rules
func DefaultPricingRules() PricingRules {
	return PricingRules{
		ShippingFee:      DefaultShippingFee,
		FreeShippingOver: DefaultFreeShippingOver,
		TaxRate:          DefaultTaxRate,
	}
}

// Shipping is free strictly above the threshold
func (r PricingRules) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeShippingOver) {
		return decimal.Zero
	}
	return r.ShippingFee
}

// Tax is TaxRate applied to the subtotal
func (r PricingRules) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(r.TaxRate)
}

// Total is subtotal + shipping + tax, rounded to cents
func (r PricingRules) Total(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(r.Shipping(subtotal)).Add(r.Tax(subtotal)).Round(2)
}
