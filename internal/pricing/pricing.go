package pricing

import "github.com/shopspring/decimal"

// Line is the minimal view of a cart row that pricing needs.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal returns the sum of price * quantity over all lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Shipping is a flat free-shipping business rule, not a logistics estimate.
func Shipping(lines []Line) decimal.Decimal {
	return decimal.Zero
}

// Total returns subtotal plus shipping.
func Total(lines []Line) decimal.Decimal {
	return Subtotal(lines).Add(Shipping(lines))
}
