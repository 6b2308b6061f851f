package abledger

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is a signed amount of some currency in its own native units.
// A negative quantity is a disposal, a positive one an acquisition.
type Quantity struct {
	value decimal.Decimal
}

func Q[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses a decimal string into a Quantity.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: d}, nil
}

func (q Quantity) Equal(p Quantity) bool        { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool     { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool  { return q.value.GreaterThan(p.value) }
func (q Quantity) Add(p Quantity) Quantity      { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity      { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity      { return Quantity{value: q.value.Mul(p.value)} }
func (q Quantity) Div(p Quantity) Quantity      { return Quantity{value: q.value.Div(p.value)} }
func (q Quantity) Neg() Quantity                { return Quantity{value: q.value.Neg()} }
func (q Quantity) Abs() Quantity                { return Quantity{value: q.value.Abs()} }
func (q Quantity) Min(p Quantity) Quantity {
	if p.value.LessThan(q.value) {
		return p
	}
	return q
}
func (q Quantity) IsNegative() bool { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool { return q.value.IsPositive() }
func (q Quantity) IsZero() bool     { return q.value.IsZero() }
func (q Quantity) String() string   { return q.value.String() }

// StringFixed formats the quantity with a fixed number of decimal places.
func (q Quantity) StringFixed(places int32) string { return q.value.StringFixed(places) }

// SameSign reports whether q and p point in the same direction. A zero
// quantity shares its sign with everything.
func (q Quantity) SameSign(p Quantity) bool {
	return !q.value.Mul(p.value).IsNegative()
}

// IsNegligible reports whether the quantity is within epsilon of zero.
func (q Quantity) IsNegligible() bool {
	return !q.value.Abs().GreaterThan(epsilon)
}

// epsilon is the quantity below which amounts are treated as zero. Input
// files carry rounded values, so strict zero comparisons are too brittle.
var epsilon = decimal.New(1, -6) // 1e-6

// MarshalJSON implements the json.Marshaler interface.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return q.value.MarshalJSON()
}
func (q *Quantity) UnmarshalJSON(b []byte) error {
	return q.value.UnmarshalJSON(b)
}
