package abledger

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a signed monetary value, in the ledger's base currency
// unless stated otherwise. Arithmetic is exact (decimal), formatting is
// delegated to the currency's conventions.
type Money struct {
	value decimal.Decimal
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// ParseMoney parses a decimal string into a Money of the given currency.
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d, cur: currency}, nil
}

// currency returns the full go-money currency for formatting purposes.
func (m Money) currency() money.Currency {
	// the Money constructor never returns a nil currency, even for codes
	// it does not know about.
	return *money.New(0, m.cur).Currency()
}

// String formats the value using the currency's display conventions.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string            { return m.cur }
func (m Money) Equal(n Money) bool          { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                { return m.value.IsZero() }
func (m Money) IsPositive() bool            { return m.value.IsPositive() }
func (m Money) IsNegative() bool            { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool       { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool    { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                  { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                  { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money        { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money        { return Money{value: m.value.Div(q.value), cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// CopySign returns m with its magnitude unchanged and its sign taken from q.
func (m Money) CopySign(q Quantity) Money {
	v := m.value.Abs()
	if q.IsNegative() {
		v = v.Neg()
	}
	return Money{value: v, cur: m.cur}
}

// AsQuantity reinterprets the monetary value as a quantity of its own
// currency. This is how synthetic base-currency offset lots are built: a
// base-currency account holds base units, so value and quantity coincide.
func (m Money) AsQuantity() Quantity { return Quantity{value: m.value} }

// IsNegligible reports whether the value is within epsilon of zero.
func (m Money) IsNegligible() bool {
	return !m.value.Abs().GreaterThan(epsilon)
}

// Decimal exposes the raw decimal value, mostly for encoding.
func (m Money) Decimal() decimal.Decimal { return m.value }

// StringFixed formats the value with a fixed number of decimal places and no
// currency decoration, for CSV output.
func (m Money) StringFixed(places int32) string { return m.value.StringFixed(places) }

// SignedString returns the string representation of the money value with an
// explicit sign. Zero is represented as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}
