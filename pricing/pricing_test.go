package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order-service/models"
	"order-service/pricing"
)

func item(price string, qty int) models.OrderItem {
	return models.OrderItem{
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func newCalculator() *pricing.Calculator {
	return pricing.NewCalculator(pricing.DefaultConfig())
}

func TestCompute_Subtotal(t *testing.T) {
	calc := newCalculator()

	totals, err := calc.Compute([]models.OrderItem{
		item("25.00", 3),
		item("4.99", 2),
	})
	require.NoError(t, err)

	assert.Equal(t, "84.98", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "9.35", totals.TaxPrice.StringFixed(2)) // 84.98 * 0.11 = 9.3478 -> 9.35
	assert.Equal(t, "10.00", totals.ShippingPrice.StringFixed(2))
	assert.Equal(t, "104.33", totals.TotalPrice.StringFixed(2))
}

func TestCompute_TotalIsSumOfParts(t *testing.T) {
	calc := newCalculator()

	totals, err := calc.Compute([]models.OrderItem{
		item("3.33", 7),
		item("0.01", 1),
		item("19.99", 4),
	})
	require.NoError(t, err)

	sum := totals.Subtotal.Add(totals.TaxPrice).Add(totals.ShippingPrice)
	assert.True(t, totals.TotalPrice.Equal(sum),
		"total %s != subtotal+tax+shipping %s", totals.TotalPrice, sum)
}

func TestCompute_FreeShippingStrictlyAboveThreshold(t *testing.T) {
	calc := newCalculator()

	// Exactly the threshold still pays shipping.
	atThreshold, err := calc.Compute([]models.OrderItem{item("100.00", 1)})
	require.NoError(t, err)
	assert.Equal(t, "10.00", atThreshold.ShippingPrice.StringFixed(2))

	// One cent above qualifies.
	aboveThreshold, err := calc.Compute([]models.OrderItem{item("100.01", 1)})
	require.NoError(t, err)
	assert.True(t, aboveThreshold.ShippingPrice.IsZero())
}

func TestCompute_EmptyItems(t *testing.T) {
	calc := newCalculator()

	totals, err := calc.Compute(nil)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TaxPrice.IsZero())
	assert.Equal(t, "10.00", totals.ShippingPrice.StringFixed(2))
	assert.Equal(t, "10.00", totals.TotalPrice.StringFixed(2))
}

func TestCompute_RejectsZeroQuantity(t *testing.T) {
	calc := newCalculator()

	_, err := calc.Compute([]models.OrderItem{item("5.00", 0)})
	var verr *pricing.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCompute_RejectsNegativePrice(t *testing.T) {
	calc := newCalculator()

	_, err := calc.Compute([]models.OrderItem{item("-1.00", 2)})
	var verr *pricing.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCompute_Deterministic(t *testing.T) {
	calc := newCalculator()
	items := []models.OrderItem{item("12.34", 5), item("0.99", 13)}

	first, err := calc.Compute(items)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := calc.Compute(items)
		require.NoError(t, err)
		assert.True(t, first.TotalPrice.Equal(again.TotalPrice))
	}
}

func TestCompute_NoFloatDrift(t *testing.T) {
	// 0.1 is not representable in binary floating point; summed 100 times
	// it must still be exactly 10.
	calc := newCalculator()

	items := make([]models.OrderItem, 100)
	for i := range items {
		items[i] = item("0.10", 1)
	}

	totals, err := calc.Compute(items)
	require.NoError(t, err)
	assert.Equal(t, "10.00", totals.Subtotal.StringFixed(2))
}

func TestCompute_CustomRates(t *testing.T) {
	calc := pricing.NewCalculator(pricing.Config{
		TaxRate:               decimal.Zero,
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.NewFromInt(5),
	})

	totals, err := calc.Compute([]models.OrderItem{item("60.00", 1)})
	require.NoError(t, err)

	assert.True(t, totals.TaxPrice.IsZero())
	assert.True(t, totals.ShippingPrice.IsZero())
	assert.Equal(t, "60.00", totals.TotalPrice.StringFixed(2))
}
