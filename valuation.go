package abledger

import (
	"errors"
	"fmt"
	"log"
	"math"
)

// Valuer determines the canonical base-currency value of each leg of a
// trade, using the configured currency priority order and the converter's
// rate tables.
type Valuer struct {
	base       string
	priorities map[string]int
	rated      int
	unknown    int
	mismatch   float64
	conv       *Converter
}

// NewValuer builds a valuer from the run configuration and a loaded
// converter.
func NewValuer(cfg *Config, conv *Converter) *Valuer {
	return &Valuer{
		base:       cfg.BaseCurrency,
		priorities: cfg.Priorities,
		rated:      cfg.RatedPriority,
		unknown:    cfg.UnknownPriority,
		mismatch:   cfg.MismatchWarnRatio,
		conv:       conv,
	}
}

// priority ranks a currency for valuation leg selection: the base currency
// outranks everything, then the configured table, then currencies with any
// rate data at all, then the rest.
func (v *Valuer) priority(currency string) int {
	if currency == v.base {
		return math.MaxInt
	}
	if p, ok := v.priorities[currency]; ok {
		return p
	}
	if v.conv.HasPair(currency, v.base) {
		return v.rated
	}
	return v.unknown
}

// Value returns the base-currency value of each leg of the record. The two
// values are always exact negations of each other except in the degenerate
// same-currency base case, where both legs are native.
func (v *Valuer) Value(r Record) (value1, value2 Money, err error) {
	if err := r.Validate(); err != nil {
		return Money{}, Money{}, err
	}

	if r.Currency1 == r.Currency2 {
		val, err := v.valueSameCurrency(r)
		if err != nil {
			return Money{}, Money{}, err
		}
		return val, val.Neg(), nil
	}

	// pick the leg the configuration trusts more and value that one; the
	// other leg is its exact negation.
	if v.priority(r.Currency1) >= v.priority(r.Currency2) {
		val, err := v.valueLeg(r.Date, r.Currency1, r.Amount1, r.Currency2, r.Amount2)
		if err != nil {
			return Money{}, Money{}, err
		}
		return val, val.Neg(), nil
	}
	val, err := v.valueLeg(r.Date, r.Currency2, r.Amount2, r.Currency1, r.Amount1)
	if err != nil {
		return Money{}, Money{}, err
	}
	return val.Neg(), val, nil
}

// valueLeg values the priority leg (cur, amount) directly, falling back to
// inferring it from the other leg when that one is already base-currency
// valued.
func (v *Valuer) valueLeg(date Datetime, cur string, amount Quantity, otherCur string, otherAmount Quantity) (Money, error) {
	if cur == v.base {
		return M(amount.value, v.base), nil
	}
	val, err := v.conv.Convert(date, cur, v.base, amount)
	if err == nil {
		return val, nil
	}
	if errors.Is(err, ErrNoRate) && otherCur == v.base {
		return M(otherAmount.value.Neg(), v.base), nil
	}
	return Money{}, fmt.Errorf("valuing %s %s: %w", amount, cur, err)
}

// valueSameCurrency handles the two legs sharing one currency, typically a
// transfer. Both legs value identically; the result is signed by Amount1.
func (v *Valuer) valueSameCurrency(r Record) (Money, error) {
	if r.Currency1 == v.base {
		return M(r.Amount1.value, v.base), nil
	}

	x1, err1 := v.conv.Convert(r.Date, r.Currency1, v.base, r.Amount1)
	x2, err2 := v.conv.Convert(r.Date, r.Currency2, v.base, r.Amount2)
	switch {
	case err1 != nil && err2 != nil:
		return Money{}, fmt.Errorf("valuing %s transfer on %s: %w", r.Currency1, r.Date, err1)
	case err1 != nil:
		return x2.Neg(), nil
	case err2 != nil:
		return x1, nil
	}

	// the legs were converted independently; tolerate small rounding or
	// fee mismatches by keeping the larger magnitude.
	a1, a2 := x1.Abs(), x2.Abs()
	larger := a1
	if a2.GreaterThan(a1) {
		larger = a2
	}
	if !larger.IsZero() {
		diff := x1.Add(x2).Abs()
		if rel := diff.Decimal().InexactFloat64() / larger.Decimal().InexactFloat64(); rel > v.mismatch {
			log.Printf("warning: %s legs disagree by %.2f%% on %s: %s vs %s",
				r.Currency1, rel*100, r.Date, x1, x2)
		}
	}
	return larger.CopySign(r.Amount1), nil
}
