package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of fractional digits every Money value carries.
const moneyScale = 2

// Money is a fixed-point amount scaled to two decimals with banker's rounding.
// The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is 0.00.
var ZeroMoney = Money{amount: decimal.Zero}

// NewMoney rounds d half-to-even to two decimals.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d.RoundBank(moneyScale)}
}

// ParseMoney parses a decimal string such as "50", "50.0" or "50.005".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("domain: parse money %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) IsGreaterThanZero() bool { return m.amount.IsPositive() }

func (m Money) IsGreaterThan(other Money) bool { return m.amount.GreaterThan(other.amount) }

func (m Money) Add(other Money) Money { return NewMoney(m.amount.Add(other.amount)) }

func (m Money) Subtract(other Money) Money { return NewMoney(m.amount.Sub(other.amount)) }

func (m Money) Multiply(multiplier int) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(multiplier))))
}

// Equal compares the two-decimal values, so 50.0 and 50.00 are equal.
func (m Money) Equal(other Money) bool {
	return m.amount.RoundBank(moneyScale).Equal(other.amount.RoundBank(moneyScale))
}

// String renders the amount with exactly two decimals, e.g. "200.00".
func (m Money) String() string { return m.amount.StringFixedBank(moneyScale) }

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("domain: decode money: %w", err)
	}
	*m = NewMoney(d)
	return nil
}
