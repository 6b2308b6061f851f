package parse

import (
	"fmt"
	"time"

	"github.com/aeron/abledger"
)

const (
	currencyfairTransferHeader = `Reference,Date,Type,Description,Amount,Currency,Status,"Received Date","Transfer Reference"`
	currencyfairTradeHeader    = "Reference,Date,Exchange Type,Order Rate,Amount Placed,Status,Amount Purchased"
)

const currencyfairTimeLayout = "2-Jan-2006 15:04"

// parseCurrencyfairTransfer reads CurrencyFair account statements: deposits
// in and transfers out become transfers against the plain currency account,
// referral credits are income valued in base currency. Unconfirmed lines are
// skipped.
func (p *Parser) parseCurrencyfairTransfer(fields []string) (*abledger.Record, error) {
	if fields[6] != "confirmed" {
		return nil, nil
	}
	t, err := time.Parse(currencyfairTimeLayout, fields[7])
	if err != nil {
		return nil, fmt.Errorf("%w: bad received date %q: %v", abledger.ErrMalformedRecord, fields[7], err)
	}
	date := abledger.NewDatetimeFromTime(t)

	a2, err := parseAmount(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q: %v", abledger.ErrMalformedRecord, fields[4], err)
	}
	cur2 := fields[5]

	switch kind := fields[2]; kind {
	case "Deposit In", "Transfer Out":
		rec := &abledger.Record{
			Date:      date,
			Currency1: cur2, Amount1: a2.Neg(), Account1: cur2,
			Currency2: cur2, Amount2: a2, Account2: "currencyfair" + cur2,
		}
		rec.FlagAsTransfer()
		return rec, nil

	case "Referral Success":
		// income from nothing: the base leg balances it at the ruling rate.
		m, err := p.Conv.Convert(date, cur2, p.Base, a2)
		if err != nil {
			return nil, fmt.Errorf("determining value of %s %s in %s: %w", a2, cur2, p.Base, err)
		}
		return &abledger.Record{
			Date:      date,
			Currency1: p.Base, Amount1: m.AsQuantity().Neg(), Account1: p.Base,
			Currency2: cur2, Amount2: a2, Account2: cur2,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected transfer type %q", abledger.ErrMalformedRecord, kind)
	}
}

// parseCurrencyfairTrade reads CurrencyFair exchange history. Unmatched
// orders are skipped.
func parseCurrencyfairTrade(fields []string) (*abledger.Record, error) {
	if fields[5] != "matched" {
		return nil, nil
	}
	t, err := time.Parse(currencyfairTimeLayout, fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q: %v", abledger.ErrMalformedRecord, fields[1], err)
	}
	a1, cur1, err := splitValue(fields[4])
	if err != nil {
		return nil, err
	}
	a2, cur2, err := splitValue(fields[6])
	if err != nil {
		return nil, err
	}
	return &abledger.Record{
		Date:      abledger.NewDatetimeFromTime(t),
		Currency1: cur1, Amount1: a1.Neg(), Account1: cur1,
		Currency2: cur2, Amount2: a2, Account2: cur2,
	}, nil
}
