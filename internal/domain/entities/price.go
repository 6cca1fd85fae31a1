package entities

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits every price is stored with.
const PriceScale = 8

var (
	ErrNegativePrice = errors.New("price must not be negative")
	ErrInvalidPrice  = errors.New("price is not a valid decimal")
)

// Price is a non-negative fixed-point amount with PriceScale fractional digits.
// It encodes to JSON as a bare number, e.g. 50010.00000000.
type Price struct {
	value decimal.Decimal
}

// NewPrice rounds d to PriceScale digits and rejects negative amounts.
func NewPrice(d decimal.Decimal) (Price, error) {
	if d.IsNegative() {
		return Price{}, fmt.Errorf("%w: %s", ErrNegativePrice, d.String())
	}
	return Price{value: d.Round(PriceScale)}, nil
}

// ParsePrice accepts plain or exponent notation, e.g. "50000.12345678" or "1.5e-3".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return NewPrice(d)
}

// MustParsePrice panics on invalid input. Intended for constants and tests.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Decimal() decimal.Decimal {
	return p.value
}

func (p Price) String() string {
	return p.value.StringFixed(PriceScale)
}

func (p Price) Equal(other Price) bool {
	return p.value.Equal(other.value)
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		return fmt.Errorf("%w: null", ErrInvalidPrice)
	}

	parsed, err := ParsePrice(strings.Trim(raw, `"`))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
