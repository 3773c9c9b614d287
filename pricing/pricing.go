package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"order-service/models"
)

// ValidationError reports a line item that cannot be priced.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Config carries the monetary constants the calculator needs. Passed in
// explicitly so there is no hidden global rate.
type Config struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// DefaultConfig returns the out-of-the-box rates: 11% tax, flat 10 shipping
// waived on subtotals strictly above 100.
func DefaultConfig() Config {
	return Config{
		TaxRate:               decimal.NewFromFloat(0.11),
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
	}
}

// Totals is the computed monetary breakdown of an order.
type Totals struct {
	Subtotal      decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Calculator computes order totals from line items. It is pure: same items
// in, same totals out, no side effects.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute returns subtotal, tax, shipping and total for the given line
// items. Accumulation stays in decimal arithmetic throughout; each
// component is rounded to 2 decimal places before being summed.
func (c *Calculator) Compute(items []models.OrderItem) (*Totals, error) {
	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, &ValidationError{Message: fmt.Sprintf("item %d: quantity must be at least 1", i)}
		}
		if item.Price.IsNegative() {
			return nil, &ValidationError{Message: fmt.Sprintf("item %d: unit price cannot be negative", i)}
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax := subtotal.Mul(c.cfg.TaxRate).Round(2)

	// Free shipping only strictly above the threshold; an exact match pays.
	shipping := c.cfg.ShippingFee.Round(2)
	if subtotal.GreaterThan(c.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	// Total is the sum of the already-rounded components so the persisted
	// invariant total = subtotal + tax + shipping holds exactly.
	subtotal = subtotal.Round(2)
	return &Totals{
		Subtotal:      subtotal,
		TaxPrice:      tax,
		ShippingPrice: shipping,
		TotalPrice:    subtotal.Add(tax).Add(shipping),
	}, nil
}
