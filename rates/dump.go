package rates

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aeron/abledger"
)

// DumpFormat names a supported trade-dump layout.
type DumpFormat string

const (
	// DumpRaw is bitcoincharts-style history: unix time, price, volume.
	DumpRaw DumpFormat = "raw"
	// DumpCSV is an already-aggregated table body: date, price.
	DumpCSV DumpFormat = "csv"
	// DumpDat is daily fixing data: 02-Jan-2006, price.
	DumpDat DumpFormat = "dat"
	// DumpPoloniex is a Poloniex full trade history export.
	DumpPoloniex DumpFormat = "polo"
	// DumpKraken is a Kraken full trade history export.
	DumpKraken DumpFormat = "krkn"
)

// DumpFormatFromExt guesses the format from a file name extension.
func DumpFormatFromExt(filename string) (DumpFormat, error) {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "", fmt.Errorf("cannot guess dump format of %q: no extension", filename)
	}
	switch f := DumpFormat(filename[i+1:]); f {
	case DumpRaw, DumpCSV, DumpDat, DumpPoloniex, DumpKraken:
		return f, nil
	}
	return "", fmt.Errorf("cannot guess dump format of %q", filename)
}

// krakenPairCodes maps plain pairs to Kraken's internal codes, for filtering
// multi-pair exports.
var krakenPairCodes = map[string]string{
	"BTCEUR": "XXBTZEUR",
	"BTCUSD": "XXBTZUSD",
	"BTCGBP": "XXBTZGBP",
	"ETHEUR": "XETHZEUR",
	"ETHUSD": "XETHZUSD",
	"ETHGBP": "XETHZGBP",
	"ETHBTC": "XETHXXBT",
	"ETCEUR": "XETCZEUR",
	"ETCBTC": "XETCXXBT",
	"ETCETH": "XETCXETH",
}

// ReadDump feeds every sample of one dump file into the builder. Samples
// outside [start, end] are dropped; multi-pair dumps keep only the builder's
// pair. weight, when positive, overrides the dump's own volume column: it
// lets several sources of different quality contribute to one table.
func ReadDump(r io.Reader, source string, format DumpFormat, b *Builder, start, end abledger.Datetime, weight float64) error {
	parse, skipHeader, err := dumpLineParser(format, b)
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || (ln == 1 && skipHeader) {
			continue
		}
		date, price, w, ok, err := parse(line)
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", abledger.ErrMalformedRecord, source, ln, err)
		}
		if !ok || date.Before(start) || date.After(end) {
			continue
		}
		if weight > 0 {
			w = weight
		}
		b.Add(date, price, w)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	return nil
}

// dumpParseFunc parses one dump line: ok is false for lines that belong to
// another pair.
type dumpParseFunc func(line string) (date abledger.Datetime, price, weight float64, ok bool, err error)

func dumpLineParser(format DumpFormat, b *Builder) (dumpParseFunc, bool, error) {
	switch format {
	case DumpRaw:
		return parseRawDump, false, nil
	case DumpCSV:
		return parseCSVDump, true, nil
	case DumpDat:
		return parseDatDump, true, nil
	case DumpPoloniex:
		market := b.From + "/" + b.To
		return func(line string) (abledger.Datetime, float64, float64, bool, error) {
			return parsePoloniexDump(line, market)
		}, true, nil
	case DumpKraken:
		code, ok := krakenPairCodes[b.From+b.To]
		if !ok {
			return nil, false, fmt.Errorf("no Kraken pair code for %s->%s", b.From, b.To)
		}
		return func(line string) (abledger.Datetime, float64, float64, bool, error) {
			return parseKrakenDump(line, code)
		}, true, nil
	}
	return nil, false, fmt.Errorf("unknown dump format %q", format)
}

func splitDump(line string, want int) ([]string, error) {
	fields := strings.Split(line, ",")
	if len(fields) < want {
		return nil, fmt.Errorf("expecting at least %d entries, got %d", want, len(fields))
	}
	for i, f := range fields {
		fields[i] = strings.Trim(f, ` "`)
	}
	return fields, nil
}

func parseRawDump(line string) (abledger.Datetime, float64, float64, bool, error) {
	fields, err := splitDump(line, 3)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, err
	}
	unix, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad unix time %q", fields[0])
	}
	price, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad price %q", fields[1])
	}
	volume, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad volume %q", fields[2])
	}
	return abledger.NewDatetimeFromTime(time.Unix(unix, 0)), price, volume, true, nil
}

func parseCSVDump(line string) (abledger.Datetime, float64, float64, bool, error) {
	fields, err := splitDump(line, 2)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, err
	}
	date, err := abledger.ParseDatetime(fields[0])
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, err
	}
	price, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad price %q", fields[1])
	}
	return date, price, 1, true, nil
}

func parseDatDump(line string) (abledger.Datetime, float64, float64, bool, error) {
	fields, err := splitDump(line, 2)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, err
	}
	t, err := time.Parse("2-Jan-2006", fields[0])
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad date %q", fields[0])
	}
	price, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad price %q", fields[1])
	}
	return abledger.NewDatetimeFromTime(t), price, 1, true, nil
}

func parsePoloniexDump(line, market string) (abledger.Datetime, float64, float64, bool, error) {
	fields, err := splitDump(line, 7)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, err
	}
	if fields[1] != market {
		return abledger.Datetime{}, 0, 0, false, nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", fields[0])
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad date %q", fields[0])
	}
	price, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad price %q", fields[4])
	}
	volume, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad volume %q", fields[6])
	}
	return abledger.NewDatetimeFromTime(t), price, volume, true, nil
}

func parseKrakenDump(line, code string) (abledger.Datetime, float64, float64, bool, error) {
	fields, err := splitDump(line, 8)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, err
	}
	if fields[2] != code {
		return abledger.Datetime{}, 0, 0, false, nil
	}
	timestr, _, _ := strings.Cut(fields[3], ".")
	t, err := time.Parse("2006-01-02 15:04:05", timestr)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad date %q", fields[3])
	}
	price, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad price %q", fields[6])
	}
	volume, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return abledger.Datetime{}, 0, 0, false, fmt.Errorf("bad volume %q", fields[7])
	}
	return abledger.NewDatetimeFromTime(t), price, volume, true, nil
}
