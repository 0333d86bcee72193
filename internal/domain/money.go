package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the single currency the portfolio is kept in.
const Currency = money.BRL

// Money is an exact monetary value in Currency, stored as major units.
type Money struct {
	value decimal.Decimal
}

// NewMoney converts a float amount (as typed in a form or returned by the model).
func NewMoney(v float64) Money {
	return Money{value: decimal.NewFromFloat(v)}
}

// MoneyFromDecimal wraps an existing decimal.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{value: d}
}

// ParseMoney parses a decimal string such as "1200.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("ParseMoney: %w", err)
	}
	return Money{value: d}, nil
}

func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money        { return Money{value: m.value.Sub(n.value)} }
func (m Money) Abs() Money               { return Money{value: m.value.Abs()} }
func (m Money) Neg() Money               { return Money{value: m.value.Neg()} }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) Decimal() decimal.Decimal { return m.value }

// Float64 is for chart series and external systems that only accept floats.
func (m Money) Float64() float64 { return m.value.InexactFloat64() }

// String formats the value the way the dashboard shows it, e.g. "R$1.200,00".
func (m Money) String() string {
	cur := money.New(0, Currency).Currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, Currency).Display()
}

// MarshalJSON writes the amount as a plain JSON number, matching the browser backups.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.value = decimal.Zero
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			m.value = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		m.value = d
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	m.value = d
	return nil
}
