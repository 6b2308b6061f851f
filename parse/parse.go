// Package parse reads exchange ledger exports into canonical records.
//
// The file format is recognized from the header line alone, so a directory of
// mixed exports can be fed through the same entry point. Each parser
// normalizes its format's quirks (fee columns, margin categories, localized
// dates) into the two-legged Record the accounting engine consumes.
package parse

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/aeron/abledger"
)

// Parser reads ledger files. Base and Conv serve the formats that must value
// a leg at parse time (raw files with a blank value column, referral
// credits).
type Parser struct {
	Base string
	Conv *abledger.Converter
}

// lineFunc parses the fields of one data line. A nil record with a nil error
// means the line is skipped.
type lineFunc func(fields []string) (*abledger.Record, error)

// location identifies an input line in error messages.
type location struct {
	source string
	line   int
}

func (l location) String() string { return fmt.Sprintf("%s:%d", l.source, l.line) }

func (l location) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", abledger.ErrMalformedRecord, l, fmt.Sprintf(format, args...))
}

// Records reads one ledger file and returns its records in file order.
// Blank lines and lines the format defines as non-ledger (unconfirmed
// orders, fee schedule noise) are skipped.
func (p *Parser) Records(r io.Reader, source string) ([]abledger.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		return nil, location{source, 1}.errorf("empty file")
	}
	header := strings.TrimSpace(sc.Text())
	parseLine, fieldCount, err := p.dispatch(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	var records []abledger.Record
	ln := 1
	for sc.Scan() {
		ln++
		loc := location{source, ln}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields, err := splitCSV(line)
		if err != nil {
			return nil, loc.errorf("%v", err)
		}
		if len(fields) != fieldCount {
			return nil, loc.errorf("expecting %d entries, got %d", fieldCount, len(fields))
		}
		rec, err := parseLine(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", loc, err)
		}
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return records, nil
}

// dispatch selects the line parser by the file's header.
func (p *Parser) dispatch(header string) (lineFunc, int, error) {
	switch header {
	case basicHeader:
		return parseBasic, 5, nil
	case rawHeader:
		return p.parseRaw, 6, nil
	case poloniexHeader:
		return parsePoloniex, 11, nil
	case krakenHeader:
		return parseKraken, 13, nil
	case bitstampHeader:
		return parseBitstamp, 8, nil
	case currencyfairTransferHeader:
		return p.parseCurrencyfairTransfer, 9, nil
	case currencyfairTradeHeader:
		return parseCurrencyfairTrade, 7, nil
	}
	return nil, 0, fmt.Errorf("%w: unknown file format with header %q", abledger.ErrMalformedRecord, header)
}

// splitCSV splits one line with quoted-field and leading-space tolerance.
func splitCSV(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.TrimLeadingSpace = true
	return cr.Read()
}

func parseAmount(s string) (abledger.Quantity, error) {
	// exports localize large amounts with thousands separators.
	return abledger.ParseQuantity(strings.ReplaceAll(s, ",", ""))
}
