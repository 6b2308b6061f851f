// Package rates builds, combines and serializes hourly conversion-rate
// tables from exchange trade dumps.
//
// A table file is CSV: a "FROM, TO" header naming the currency pair, then one
// "date, rate" line per hour in the canonical minute format.
package rates

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aeron/abledger"
	"github.com/shopspring/decimal"
)

// Table is one currency pair's hourly rate series, dates sorted ascending.
type Table struct {
	From, To string

	dates []abledger.Datetime
	rates map[abledger.Datetime]decimal.Decimal
}

// NewTable returns an empty table for the pair.
func NewTable(from, to string) *Table {
	return &Table{From: from, To: to, rates: make(map[abledger.Datetime]decimal.Decimal)}
}

// Set inserts or replaces the rate of the hour bucket containing date.
func (t *Table) Set(date abledger.Datetime, rate decimal.Decimal) {
	h := date.HourStart()
	if _, ok := t.rates[h]; !ok {
		i, _ := slices.BinarySearchFunc(t.dates, h, compareDates)
		t.dates = slices.Insert(t.dates, i, h)
	}
	t.rates[h] = rate
}

// Rate returns the rate of the hour bucket containing date.
func (t *Table) Rate(date abledger.Datetime) (decimal.Decimal, bool) {
	r, ok := t.rates[date.HourStart()]
	return r, ok
}

// Len returns the number of hourly entries.
func (t *Table) Len() int { return len(t.dates) }

// Dates returns the table's hour buckets, ascending.
func (t *Table) Dates() []abledger.Datetime { return slices.Clone(t.dates) }

func compareDates(a, b abledger.Datetime) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// AddTo loads every entry of the table into a converter.
func (t *Table) AddTo(conv *abledger.Converter) {
	for _, d := range t.dates {
		conv.AddRate(t.From, t.To, d, t.rates[d])
	}
}

// Encode writes the table in its file form.
func (t *Table) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s, %s\n", t.From, t.To)
	for _, d := range t.dates {
		fmt.Fprintf(bw, "%s, %s\n", d, t.rates[d])
	}
	return bw.Flush()
}

// DecodeTable reads a table file. source names the input in errors.
func DecodeTable(r io.Reader, source string) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: %s: missing pair header", abledger.ErrMalformedRecord, source)
	}
	from, to, ok := strings.Cut(sc.Text(), ",")
	if !ok {
		return nil, fmt.Errorf("%w: %s: bad pair header %q", abledger.ErrMalformedRecord, source, sc.Text())
	}
	t := NewTable(strings.TrimSpace(from), strings.TrimSpace(to))

	ln := 1
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		datestr, ratestr, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: bad entry %q", abledger.ErrMalformedRecord, source, ln, line)
		}
		date, err := abledger.ParseDatetime(datestr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", abledger.ErrMalformedRecord, source, ln, err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(ratestr))
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: bad rate %q", abledger.ErrMalformedRecord, source, ln, ratestr)
		}
		t.Set(date, rate)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return t, nil
}
