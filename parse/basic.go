package parse

import (
	"fmt"
	"time"

	"github.com/aeron/abledger"
)

const basicHeader = "Date, From-Currency, Amount, To-Currency, Value"

// parseBasic reads the plain hand-maintained ledger format: one exchange per
// line, negative amount on the from-currency leg.
func parseBasic(fields []string) (*abledger.Record, error) {
	t, err := time.Parse("02/01/2006 15:04:05", fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q: %v", abledger.ErrMalformedRecord, fields[0], err)
	}
	a1, err := parseAmount(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q: %v", abledger.ErrMalformedRecord, fields[2], err)
	}
	a2, err := parseAmount(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q: %v", abledger.ErrMalformedRecord, fields[4], err)
	}
	return &abledger.Record{
		Date:      abledger.NewDatetimeFromTime(t),
		Currency1: fields[1], Amount1: a1, Account1: fields[1],
		Currency2: fields[3], Amount2: a2, Account2: fields[3],
	}, nil
}
