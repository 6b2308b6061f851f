package parse

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aeron/abledger"
)

// This file converts exchange movement exports into the raw ledger format,
// so deposits and withdrawals line up with the transfers reported by the
// other side and can be reconciled away.

const krakenLedgerHeader = `"txid","refid","time","type","aclass","asset","amount","fee","balance"`

// krakenAssets translates Kraken's internal asset codes.
var krakenAssets = map[string]string{
	"ZEUR": "EUR",
	"ZUSD": "USD",
	"ZGBP": "GBP",
	"XETH": "ETH",
	"XXBT": "BTC",
	"XETC": "ETC",
	"XXLM": "XLM",
}

// ConvertKrakenLedger reads a Kraken ledger export and writes its deposits,
// withdrawals and internal transfers as raw-format lines. Fee entries come
// out as separate zero-valued lines so they reduce the holding without
// touching the base account.
func ConvertKrakenLedger(w io.Writer, r io.Reader, source string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, rawHeader)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		loc := location{source, ln}
		line := strings.TrimSpace(sc.Text())
		if ln == 1 {
			if line != krakenLedgerHeader {
				return loc.errorf("first line is not the expected Kraken ledger header")
			}
			continue
		}
		if line == "" {
			continue
		}
		fields, err := splitCSV(line)
		if err != nil {
			return loc.errorf("%v", err)
		}
		if len(fields) != 9 {
			return loc.errorf("expecting 9 entries, got %d", len(fields))
		}
		kind, asset := fields[3], fields[5]
		if asset == "KFEE" {
			continue
		}
		switch kind {
		case "deposit", "withdrawal", "transfer":
		default:
			continue
		}

		t, err := time.Parse("2006-01-02 15:04:05", fields[2])
		if err != nil {
			return loc.errorf("bad date %q: %v", fields[2], err)
		}
		date := abledger.NewDatetimeFromTime(t).HourStart()
		currency, ok := krakenAssets[asset]
		if !ok {
			return loc.errorf("unknown asset %q", asset)
		}
		amount, err := parseAmount(fields[6])
		if err != nil {
			return loc.errorf("bad amount %q: %v", fields[6], err)
		}

		switch kind {
		case "deposit", "withdrawal":
			fmt.Fprintf(bw, "%s, %s, %s, %s, %s, ->kraken\n",
				date, currency, amount.Neg(), currency, amount)
		case "transfer":
			fmt.Fprintf(bw, "%s, GBP, 0, %s, %s,\n", date, currency, amount)
		}

		fee, err := parseAmount(fields[7])
		if err != nil {
			return loc.errorf("bad fee %q: %v", fields[7], err)
		}
		if fee = fee.Abs(); fee.IsPositive() {
			fmt.Fprintf(bw, "%s, GBP, 0, %s, %s,\n", date, currency, fee.Neg())
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	return bw.Flush()
}

const poloniexHistoryHeader = "Date,Currency,Amount,Address,Status"

// PoloniexDirection says which side of the exchange a history file records.
type PoloniexDirection int

const (
	PoloniexDeposits PoloniexDirection = iota
	PoloniexWithdrawals
)

// ConvertPoloniexHistory reads a Poloniex deposit or withdrawal history
// export and writes raw-format transfer lines. Entries not marked COMPLETE,
// or marked as errored, are dropped with a warning line count returned.
func ConvertPoloniexHistory(w io.Writer, r io.Reader, source string, dir PoloniexDirection) (skipped int, err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, rawHeader)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		loc := location{source, ln}
		line := strings.TrimSpace(sc.Text())
		if ln == 1 {
			if line != poloniexHistoryHeader {
				return skipped, loc.errorf("first line is not the expected Poloniex history header")
			}
			continue
		}
		if line == "" {
			continue
		}
		if !strings.Contains(line, "COMPLETE") || strings.Contains(line, "ERROR") {
			skipped++
			continue
		}
		fields, err := splitCSV(line)
		if err != nil {
			return skipped, loc.errorf("%v", err)
		}
		if len(fields) != 5 {
			return skipped, loc.errorf("expecting 5 entries, got %d", len(fields))
		}
		t, err := time.Parse("2006-01-02 15:04:05", fields[0])
		if err != nil {
			return skipped, loc.errorf("bad date %q: %v", fields[0], err)
		}
		date := abledger.NewDatetimeFromTime(t).HourStart()
		currency := fields[1]
		amount, err := parseAmount(fields[2])
		if err != nil {
			return skipped, loc.errorf("bad amount %q: %v", fields[2], err)
		}

		switch dir {
		case PoloniexDeposits:
			fmt.Fprintf(bw, "%s, %s, %s, %s, %s, ->poloniex\n",
				date, currency, amount.Neg(), currency, amount)
		case PoloniexWithdrawals:
			fmt.Fprintf(bw, "%s, %s, %s, %s, %s, poloniex->\n",
				date, currency, amount.Neg(), currency, amount)
		}
	}
	if err := sc.Err(); err != nil {
		return skipped, fmt.Errorf("reading %s: %w", source, err)
	}
	return skipped, bw.Flush()
}
