// Package money renders minor-unit integer amounts for people.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidAmount = errors.New("invalid amount")

var (
	minMinor = decimal.NewFromInt(math.MinInt64)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// Formatter converts between minor units and display strings for one currency.
type Formatter struct {
	unit   currency.Unit
	symbol string
	scale  int32
}

// NewFormatter builds a Formatter for an ISO 4217 code such as "INR" or "EUR".
func NewFormatter(code string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}

	scale, _ := currency.Standard.Rounding(unit)

	return &Formatter{
		unit:   unit,
		symbol: message.NewPrinter(language.English).Sprint(currency.Symbol(unit)),
		scale:  int32(scale),
	}, nil
}

// Code returns the ISO 4217 code.
func (f *Formatter) Code() string {
	return f.unit.String()
}

// Scale returns the number of minor-unit digits.
func (f *Formatter) Scale() int32 {
	return f.scale
}

// Decimal returns minor as a major-unit decimal.
func (f *Formatter) Decimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -f.scale)
}

// Format renders minor as e.g. "₹ 12.50", or "-₹ 12.50" for negatives.
func (f *Formatter) Format(minor int64) string {
	d := f.Decimal(minor)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	return fmt.Sprintf("%s%s %s", sign, f.symbol, d.StringFixed(f.scale))
}

// Plain renders minor without a symbol, e.g. "12.50".
func (f *Formatter) Plain(minor int64) string {
	return f.Decimal(minor).StringFixed(f.scale)
}

// Parse reads a major-unit amount such as "12.5" into minor units. It
// rejects amounts with more fractional digits than the currency allows.
func (f *Formatter) Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	minor := d.Shift(f.scale)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, f.scale)
	}

	if minor.LessThan(minMinor) || minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}

	return minor.IntPart(), nil
}
