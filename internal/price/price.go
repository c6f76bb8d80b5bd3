// Package price holds the fixed-precision helpers shared by the frame
// decoder, the book store and the display.
//
// Conventions:
//   - Prices and sizes are shopspring decimals, never float64
//   - Map keys are prices rendered with KeyPlaces fractional digits
//   - Rounding to key precision is banker's rounding (half to even)
package price

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// KeyPlaces is the number of fractional digits in a canonical price key.
const KeyPlaces = 4

// Wire values outside these bounds are rejected by Parse. Rounding a
// decimal costs time proportional to its exponent.
const (
	MaxLen      = 64
	MaxExponent = 18
)

var (
	ErrEmpty   = errors.New("empty decimal")
	ErrInvalid = errors.New("invalid decimal")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Parse converts a wire value such as "0.52" or " 0.5250 " to a decimal.
// Values longer than MaxLen or with an exponent beyond ±MaxExponent are
// invalid.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	if len(s) > MaxLen {
		return decimal.Zero, fmt.Errorf("parse %.16q...: %w", s, ErrInvalid)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %q: %w", s, ErrInvalid)
	}
	if exp := d.Exponent(); exp < -MaxExponent || exp > MaxExponent {
		return decimal.Zero, fmt.Errorf("parse %q: exponent %d out of range: %w", s, exp, ErrInvalid)
	}
	return d, nil
}

// Round returns p rounded to key precision.
func Round(p decimal.Decimal) decimal.Decimal {
	return p.RoundBank(KeyPlaces)
}

// Key renders p as a canonical map key.
// "0.5", "0.50" and "0.5000" all map to "0.5000".
func Key(p decimal.Decimal) string {
	return p.StringFixedBank(KeyPlaces)
}

// KeyOf parses s and returns its canonical key.
func KeyOf(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Key(d), nil
}

// Spread returns ask - bid.
func Spread(bid, ask decimal.Decimal) decimal.Decimal {
	return ask.Sub(bid)
}

// Mid returns the average of bid and ask.
func Mid(bid, ask decimal.Decimal) decimal.Decimal {
	return bid.Add(ask).Div(two)
}

// Cents formats a price for display, right-aligned to five columns.
// Values at or below 1 are dollars and are scaled to cents.
// 0.45 -> "   45¢", 0.455 -> " 45.5¢".
func Cents(p decimal.Decimal) string {
	if p.LessThanOrEqual(one) {
		p = p.Mul(hundred)
	}
	p = p.Round(1)
	if p.Equal(p.Truncate(0)) {
		return fmt.Sprintf("%5s¢", p.StringFixed(0))
	}
	return fmt.Sprintf("%5s¢", p.StringFixed(1))
}

// CentsDelta formats a dollar difference (spread, mid) in cents with one
// decimal place: 0.1 -> "10.0¢".
func CentsDelta(d decimal.Decimal) string {
	return d.Mul(hundred).StringFixedBank(1) + "¢"
}

// Contracts rounds a size half-up to whole contracts.
func Contracts(size decimal.Decimal) int64 {
	return size.Round(0).IntPart()
}
