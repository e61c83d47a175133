// Package money handles the clinic's monetary amounts with fixed-precision
// decimals. Amounts are rupee values with cents; binary floats are never
// used for arithmetic or comparison.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the ceiling for any single monetary field.
var MaxAmount = decimal.NewFromInt(500000)

// Zero is the zero amount.
var Zero = decimal.Zero

// ErrNotNumeric is returned by Parse for input that is not a plain decimal
// number.
type ErrNotNumeric struct {
	Input string
}

func (e *ErrNotNumeric) Error() string {
	return fmt.Sprintf("not a numeric amount: %q", e.Input)
}

// SanitizeInput strips characters that can never appear in an amount while
// the user is typing: everything except digits and the first decimal point.
// It mirrors the input filter on amount fields, so partial input like "12."
// survives unchanged.
func SanitizeInput(s string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse converts user input to an amount. Empty input parses as zero.
// Input containing anything but digits and a single decimal point is
// rejected; values are rounded to cents.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if SanitizeInput(s) != s {
		return decimal.Zero, &ErrNotNumeric{Input: s}
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, &ErrNotNumeric{Input: s}
	}
	return d.Round(2), nil
}

// Clamp bounds an amount to [0, MaxAmount].
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(MaxAmount) {
		return MaxAmount
	}
	return d
}

// InRange reports whether an amount is within [0, MaxAmount].
func InRange(d decimal.Decimal) bool {
	return !d.IsNegative() && !d.GreaterThan(MaxAmount)
}

// MaxPayment returns the largest acceptable payment for a visit: the
// current charge plus the patient's outstanding balance. A payment may
// clear prior debt but never exceed this sum.
func MaxPayment(total, balance decimal.Decimal) decimal.Decimal {
	return total.Add(balance)
}

// ValidatePayment checks paid against the ceiling computed from total and
// balance. The returned error names the maximum so it can be surfaced on
// the form as-is.
func ValidatePayment(total, paid, balance decimal.Decimal) error {
	if paid.IsNegative() {
		return fmt.Errorf("paid amount cannot be negative")
	}
	max := MaxPayment(total, balance)
	if paid.GreaterThan(max) {
		return fmt.Errorf("paid amount cannot exceed %s", max.StringFixed(2))
	}
	return nil
}

// Pending returns the unpaid remainder of a visit, floored at zero so an
// overpayment on one visit never shows as negative debt.
func Pending(total, paid decimal.Decimal) decimal.Decimal {
	p := total.Sub(paid)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
