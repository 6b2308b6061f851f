package parse

import (
	"fmt"
	"strings"

	"github.com/aeron/abledger"
)

const rawHeader = "Date, Base Currency, Value, Trade Currency, Amount, Transfer Info"

// parseRaw reads the intermediate format emitted by the import commands:
// canonical dates, either value possibly blank, and an optional
// "from->to" transfer annotation.
func (p *Parser) parseRaw(fields []string) (*abledger.Record, error) {
	date, err := abledger.ParseDatetime(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abledger.ErrMalformedRecord, err)
	}
	cur1, cur2 := fields[1], fields[3]
	v1, v2 := strings.TrimSpace(fields[2]), strings.TrimSpace(fields[4])
	if v1 == "" && v2 == "" {
		return nil, fmt.Errorf("%w: no values for transaction on %s", abledger.ErrMalformedRecord, date)
	}

	var a1, a2 abledger.Quantity
	if v1 != "" {
		if a1, err = parseAmount(v1); err != nil {
			return nil, fmt.Errorf("%w: bad value %q: %v", abledger.ErrMalformedRecord, v1, err)
		}
	}
	if v2 != "" {
		if a2, err = parseAmount(v2); err != nil {
			return nil, fmt.Errorf("%w: bad amount %q: %v", abledger.ErrMalformedRecord, v2, err)
		}
	}

	// a blank side is worth the negation of the other side, converted at the
	// ruling hourly rate.
	if v1 == "" {
		m, err := p.Conv.Convert(date, cur2, cur1, a2)
		if err != nil {
			return nil, fmt.Errorf("determining value of %s %s in %s: %w", a2, cur2, cur1, err)
		}
		a1 = m.AsQuantity().Neg()
	}
	if v2 == "" {
		m, err := p.Conv.Convert(date, cur1, cur2, a1)
		if err != nil {
			return nil, fmt.Errorf("determining value of %s %s in %s: %w", a1, cur1, cur2, err)
		}
		a2 = m.AsQuantity().Neg()
	}

	rec := &abledger.Record{
		Date:      date,
		Currency1: cur1, Amount1: a1, Account1: cur1,
		Currency2: cur2, Amount2: a2, Account2: cur2,
	}

	if info := strings.TrimSpace(fields[5]); info != "" {
		from, to, ok := strings.Cut(info, "->")
		if !ok || cur1 != cur2 || !a1.Equal(a2.Neg()) {
			return nil, fmt.Errorf("%w: invalid account transfer %q on %s: %s %s -> %s %s",
				abledger.ErrMalformedRecord, info, date, a1, cur1, a2, cur2)
		}
		rec.Account1 = from + cur1
		rec.Account2 = to + cur2
		rec.FlagAsTransfer()
	}
	return rec, nil
}
