package abledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Converter holds hourly exchange-rate tables, keyed by currency pair and by
// date truncated down to the hour. It is the external rate source the
// valuation layer consults; all tables must be loaded before any account is
// processed.
type Converter struct {
	tables map[string]map[Datetime]decimal.Decimal
}

// NewConverter returns an empty converter.
func NewConverter() *Converter {
	return &Converter{tables: make(map[string]map[Datetime]decimal.Decimal)}
}

func pairKey(from, to string) string { return from + to }

// AddRate registers a conversion rate for the hour bucket containing date.
func (c *Converter) AddRate(from, to string, date Datetime, rate decimal.Decimal) {
	key := pairKey(from, to)
	t, ok := c.tables[key]
	if !ok {
		t = make(map[Datetime]decimal.Decimal)
		c.tables[key] = t
	}
	t[date.HourStart()] = rate
}

// HasPair reports whether any rate data exists for the pair, regardless of
// date. The valuation priority order uses this to prefer currencies it can
// actually value.
func (c *Converter) HasPair(from, to string) bool {
	return len(c.tables[pairKey(from, to)]) > 0
}

// CanConvertOn reports whether a rate exists for the pair in the hour bucket
// containing date.
func (c *Converter) CanConvertOn(date Datetime, from, to string) bool {
	t, ok := c.tables[pairKey(from, to)]
	if !ok {
		return false
	}
	_, ok = t[date.HourStart()]
	return ok
}

// Convert values an amount of the from currency in the to currency, using
// the rate of the hour bucket containing date. Missing rates are an
// ErrNoRate: fatal for the transaction unless the caller can infer the value
// from a base-currency leg.
func (c *Converter) Convert(date Datetime, from, to string, amount Quantity) (Money, error) {
	t, ok := c.tables[pairKey(from, to)]
	if !ok {
		return Money{}, fmt.Errorf("%w: no table for %s->%s", ErrNoRate, from, to)
	}
	rate, ok := t[date.HourStart()]
	if !ok {
		return Money{}, fmt.Errorf("%w: %s->%s on %s", ErrNoRate, from, to, date.HourStart())
	}
	return M(amount.value.Mul(rate), to), nil
}
