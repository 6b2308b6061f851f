package rates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aeron/abledger"
)

/*
	[
	    {
	        "date": 1405699200,
	        "high": 0.0045388,
	        "low": 0.00403001,
	        "open": 0.00404545,
	        "close": 0.00427592,
	        "volume": 44.11655644,
	        "quoteVolume": 10259.29079097,
	        "weightedAverage": 0.00430015
	    },
	...
*/

// FetchPoloniexChart pulls hourly candles for the builder's pair from the
// Poloniex public chart API and feeds their weighted averages into the
// builder, volume as weight.
func FetchPoloniexChart(client *http.Client, b *Builder, start, end abledger.Datetime) error {
	addr := fmt.Sprintf(
		"https://poloniex.com/public?command=returnChartData&currencyPair=%s_%s&period=3600&start=%d&end=%d",
		b.To, b.From, unixOf(start), unixOf(end))

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return fmt.Errorf("fetching %s->%s chart: %w", b.From, b.To, err)
	}

	dates, err := floats(jobj, "$[*].date")
	if err != nil {
		return fmt.Errorf("parsing %s->%s chart: %w", b.From, b.To, err)
	}
	prices, err := floats(jobj, "$[*].weightedAverage")
	if err != nil {
		return fmt.Errorf("parsing %s->%s chart: %w", b.From, b.To, err)
	}
	volumes, err := floats(jobj, "$[*].volume")
	if err != nil {
		return fmt.Errorf("parsing %s->%s chart: %w", b.From, b.To, err)
	}
	if len(dates) != len(prices) || len(dates) != len(volumes) {
		return fmt.Errorf("parsing %s->%s chart: ragged candle columns", b.From, b.To)
	}

	for i, d := range dates {
		if prices[i] == 0 {
			// the API backfills empty candles with zeroes.
			continue
		}
		b.Add(abledger.NewDatetimeFromTime(time.Unix(int64(d), 0)), prices[i], volumes[i])
	}
	return nil
}

func unixOf(d abledger.Datetime) int64 {
	t, _ := time.Parse(abledger.DatetimeFormat, d.String())
	return t.Unix()
}

// floats evaluates a jsonpath expression expected to yield a list of
// numbers.
func floats(jobj any, path string) ([]float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list or a single
	// answer: normalize to a list.
	jlist, ok := jval.([]any)
	if !ok {
		jlist = []any{jval}
	}
	out := make([]float64, 0, len(jlist))
	for _, v := range jlist {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%q: not a number: %v", path, v)
		}
		out = append(out, f)
	}
	return out, nil
}

func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
