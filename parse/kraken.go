package parse

import (
	"fmt"
	"strings"
	"time"

	"github.com/aeron/abledger"
	"github.com/shopspring/decimal"
)

const krakenHeader = `"txid","ordertxid","pair","time","type","ordertype","price","cost","fee","vol","margin","misc","ledgers"`

// krakenPairs translates Kraken's internal pair codes to currency pairs,
// volume currency first.
var krakenPairs = map[string][2]string{
	"XXBTZEUR": {"BTC", "EUR"},
	"XXBTZUSD": {"BTC", "USD"},
	"XXBTZGBP": {"BTC", "GBP"},
	"XETHZEUR": {"ETH", "EUR"},
	"XETHZUSD": {"ETH", "USD"},
	"XETHZGBP": {"ETH", "GBP"},
	"XETHXXBT": {"ETH", "BTC"},
	"XETCZEUR": {"ETC", "EUR"},
	"XETCXXBT": {"ETC", "BTC"},
	"XETCXETH": {"ETC", "ETH"},
}

// the fee is assumed to be charged in the cost currency; a fee outside the
// published schedule means that assumption broke.
var (
	krakenMaxFeeRatio = decimal.RequireFromString("0.005")
	krakenMinFee      = decimal.RequireFromString("0.00001")
)

// parseKraken reads Kraken trade exports.
func parseKraken(fields []string) (*abledger.Record, error) {
	// timestamps carry fractional seconds.
	timestr, _, _ := strings.Cut(fields[3], ".")
	t, err := time.Parse("2006-01-02 15:04:05", timestr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q: %v", abledger.ErrMalformedRecord, fields[3], err)
	}

	cost, err := parseAmount(fields[7])
	if err != nil {
		return nil, fmt.Errorf("%w: bad cost %q: %v", abledger.ErrMalformedRecord, fields[7], err)
	}
	fee, err := parseAmount(fields[8])
	if err != nil {
		return nil, fmt.Errorf("%w: bad fee %q: %v", abledger.ErrMalformedRecord, fields[8], err)
	}
	vol, err := parseAmount(fields[9])
	if err != nil {
		return nil, fmt.Errorf("%w: bad volume %q: %v", abledger.ErrMalformedRecord, fields[9], err)
	}

	if fee.GreaterThan(abledger.Q(krakenMinFee)) {
		if cost.IsZero() || fee.Div(cost).GreaterThan(abledger.Q(krakenMaxFeeRatio)) {
			return nil, fmt.Errorf("%w: unexpected fee schedule: fee %s on cost %s",
				abledger.ErrMalformedRecord, fee, cost)
		}
	}

	a1 := vol
	a2 := cost.Sub(fee)
	switch kind := fields[4]; kind {
	case "sell":
		a1 = a1.Neg()
	case "buy":
		a2 = a2.Neg()
	default:
		return nil, fmt.Errorf("%w: unknown trade type %q", abledger.ErrMalformedRecord, kind)
	}

	pair, ok := krakenPairs[fields[2]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown currency pair %q", abledger.ErrMalformedRecord, fields[2])
	}

	return &abledger.Record{
		Date:      abledger.NewDatetimeFromTime(t),
		Currency1: pair[0], Amount1: a1, Account1: pair[0],
		Currency2: pair[1], Amount2: a2, Account2: pair[1],
	}, nil
}
