package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/aeron/abledger"
)

const bitstampHeader = "Type,Datetime,Account,Amount,Value,Rate,Fee,Sub Type"

// splitValue splits a Bitstamp "0.50000000 BTC" column into its amount and
// currency.
func splitValue(s string) (abledger.Quantity, string, error) {
	amount, cur, ok := strings.Cut(s, " ")
	if !ok {
		return abledger.Quantity{}, "", fmt.Errorf("%w: bad amount %q", abledger.ErrMalformedRecord, s)
	}
	q, err := parseAmount(amount)
	if err != nil {
		return abledger.Quantity{}, "", fmt.Errorf("%w: bad amount %q: %v", abledger.ErrMalformedRecord, s, err)
	}
	return q, cur, nil
}

// parseBitstamp reads Bitstamp account exports. Market lines are trades with
// the fee taken off whichever leg it was charged in; deposits and withdrawals
// become transfers against the plain currency account. Every other line type
// is ignored.
func parseBitstamp(fields []string) (*abledger.Record, error) {
	category := fields[0]
	switch category {
	case "Market", "Deposit", "Withdrawal":
	default:
		return nil, nil
	}

	t, err := time.Parse("Jan. 2, 2006, 03:04 PM", fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q: %v", abledger.ErrMalformedRecord, fields[1], err)
	}
	date := abledger.NewDatetimeFromTime(t)

	a1, cur1, err := splitValue(fields[3])
	if err != nil {
		return nil, err
	}

	if category != "Market" {
		rec := &abledger.Record{
			Date:      date,
			Currency1: cur1, Account1: "bitstamp" + cur1,
			Currency2: cur1, Account2: cur1,
		}
		if category == "Deposit" {
			rec.Amount1, rec.Amount2 = a1, a1.Neg()
		} else {
			rec.Amount1, rec.Amount2 = a1.Neg(), a1
		}
		rec.FlagAsTransfer()
		return rec, nil
	}

	a2, cur2, err := splitValue(fields[4])
	if err != nil {
		return nil, err
	}
	if fee := strings.TrimSpace(fields[6]); fee != "" {
		f, fcur, err := splitValue(fee)
		if err != nil {
			return nil, err
		}
		switch fcur {
		case cur1:
			a1 = a1.Sub(f)
		case cur2:
			a2 = a2.Sub(f)
		default:
			return nil, fmt.Errorf("%w: unexpected fee currency %q", abledger.ErrMalformedRecord, fcur)
		}
	}

	switch kind := fields[7]; kind {
	case "Sell":
		a1 = a1.Neg()
	case "Buy":
		a2 = a2.Neg()
	default:
		return nil, fmt.Errorf("%w: unknown trade type %q", abledger.ErrMalformedRecord, kind)
	}

	return &abledger.Record{
		Date:      date,
		Currency1: cur1, Amount1: a1, Account1: cur1,
		Currency2: cur2, Amount2: a2, Account2: cur2,
	}, nil
}
