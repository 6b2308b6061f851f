package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/aeron/abledger"
)

const poloniexHeader = "Date,Market,Category,Type,Price,Amount,Total,Fee,Order Number,Base Total Less Fee,Quote Total Less Fee"

// parsePoloniex reads Poloniex trade history exports. Margin trades and
// settlements are kept apart from spot holdings by suffixing the quote
// currency, and settlement lines carry no quote movement at all: they pay off
// lending fees.
func parsePoloniex(fields []string) (*abledger.Record, error) {
	t, err := time.Parse("2006-01-02 15:04:05", fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q: %v", abledger.ErrMalformedRecord, fields[0], err)
	}
	cur1, cur2, ok := strings.Cut(fields[1], "/")
	if !ok {
		return nil, fmt.Errorf("%w: bad market %q", abledger.ErrMalformedRecord, fields[1])
	}
	a1, err := parseAmount(fields[10]) // quote total less fee
	if err != nil {
		return nil, fmt.Errorf("%w: bad quote total %q: %v", abledger.ErrMalformedRecord, fields[10], err)
	}
	a2, err := parseAmount(fields[9]) // base total less fee
	if err != nil {
		return nil, fmt.Errorf("%w: bad base total %q: %v", abledger.ErrMalformedRecord, fields[9], err)
	}

	switch category := fields[2]; category {
	case "Exchange":
	case "Margin trade":
		cur1 += "margin"
	case "Settlement":
		cur1 += "margin"
		a1 = abledger.Q(0)
	default:
		return nil, fmt.Errorf("%w: unknown trade category %q", abledger.ErrMalformedRecord, category)
	}

	switch kind := fields[3]; kind {
	case "Buy":
		if a1.IsNegative() || a2.IsPositive() {
			return nil, fmt.Errorf("%w: inconsistent Buy: %s %s <> %s %s",
				abledger.ErrMalformedRecord, a1, cur1, a2, cur2)
		}
	case "Sell":
		if a1.IsPositive() || a2.IsNegative() {
			return nil, fmt.Errorf("%w: inconsistent Sell: %s %s <> %s %s",
				abledger.ErrMalformedRecord, a1, cur1, a2, cur2)
		}
	default:
		return nil, fmt.Errorf("%w: unknown trade type %q", abledger.ErrMalformedRecord, kind)
	}

	return &abledger.Record{
		Date:      abledger.NewDatetimeFromTime(t),
		Currency1: cur1, Amount1: a1, Account1: cur1,
		Currency2: cur2, Amount2: a2, Account2: cur2,
	}, nil
}
