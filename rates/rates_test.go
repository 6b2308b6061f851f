package rates

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aeron/abledger"
	"github.com/shopspring/decimal"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// rewriteHost redirects every request to the test server.
type rewriteHost string

func (h rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	u, err := url.Parse(string(h))
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	return http.DefaultTransport.RoundTrip(req)
}

func wantRate(t *testing.T, tab *Table, date string, want float64) {
	t.Helper()
	r, ok := tab.Rate(abledger.MustParseDatetime(date))
	if !ok {
		t.Errorf("no rate at %s", date)
		return
	}
	if got := r.InexactFloat64(); math.Abs(got-want) > 1e-9 {
		t.Errorf("rate at %s = %v, want %v", date, got, want)
	}
}

func TestDecodeTable(t *testing.T) {
	content := "BTC, GBP\n" +
		"2016-07-01-10-00, 450.5\n" +
		"\n" +
		"2016-07-01-11-00, 451\n"
	tab, err := DecodeTable(strings.NewReader(content), "btcgbp.csv")
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	if tab.From != "BTC" || tab.To != "GBP" {
		t.Errorf("pair = %s->%s, want BTC->GBP", tab.From, tab.To)
	}
	if tab.Len() != 2 {
		t.Fatalf("entries = %d, want 2", tab.Len())
	}
	wantRate(t, tab, "2016-07-01-10-30", 450.5) // minutes are ignored
	wantRate(t, tab, "2016-07-01-11-00", 451)

	conv := abledger.NewConverter()
	tab.AddTo(conv)
	if !conv.CanConvertOn(abledger.MustParseDatetime("2016-07-01-10-59"), "BTC", "GBP") {
		t.Error("AddTo did not load the converter")
	}
}

func TestTable_EncodeKeepsOrder(t *testing.T) {
	tab := NewTable("BTC", "GBP")
	tab.Set(abledger.MustParseDatetime("2016-07-01-11-00"), dec(451))
	tab.Set(abledger.MustParseDatetime("2016-07-01-10-00"), dec(450))

	var sb strings.Builder
	if err := tab.Encode(&sb); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "BTC, GBP\n2016-07-01-10-00, 450\n2016-07-01-11-00, 451\n"
	if sb.String() != want {
		t.Errorf("encoded:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestBuilder_WeightedMean(t *testing.T) {
	b := NewBuilder("BTC", "GBP", Mean)
	b.Add(abledger.MustParseDatetime("2016-07-01-10-05"), 100, 1)
	b.Add(abledger.MustParseDatetime("2016-07-01-10-55"), 200, 3)
	tab, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	wantRate(t, tab, "2016-07-01-10-00", 175)
}

func TestBuilder_Median(t *testing.T) {
	b := NewBuilder("BTC", "GBP", Median)
	for _, p := range []float64{100, 102, 500} {
		b.Add(abledger.MustParseDatetime("2016-07-01-10-05"), p, 1)
	}
	tab, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	wantRate(t, tab, "2016-07-01-10-00", 102)
}

func TestBuilder_GapFill(t *testing.T) {
	b := NewBuilder("BTC", "GBP", Mean)
	b.Add(abledger.MustParseDatetime("2016-07-01-10-05"), 100, 1)
	b.Add(abledger.MustParseDatetime("2016-07-01-13-30"), 130, 1)
	tab, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tab.Len() != 4 {
		t.Fatalf("entries = %d, want 4 (two samples, two filled hours)", tab.Len())
	}
	wantRate(t, tab, "2016-07-01-11-00", 100)
	wantRate(t, tab, "2016-07-01-12-00", 100)
	wantRate(t, tab, "2016-07-01-13-00", 130)
}

func TestBuilder_RobustMeanClampsOutliers(t *testing.T) {
	b := NewBuilder("BTC", "GBP", RobustMean)
	hours := []string{
		"2016-07-01-10-00", "2016-07-01-11-00", "2016-07-01-12-00",
		"2016-07-01-13-00", "2016-07-01-14-00",
	}
	prices := []float64{100, 100, 500, 100, 100} // rogue print in the middle
	for i, h := range hours {
		b.Add(abledger.MustParseDatetime(h), prices[i], 1)
	}
	tab, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	wantRate(t, tab, "2016-07-01-11-00", 100)
	wantRate(t, tab, "2016-07-01-12-00", 108) // clamped to median + 8%
	wantRate(t, tab, "2016-07-01-13-00", 100)
}

func TestBuilder_NoSamples(t *testing.T) {
	if _, err := NewBuilder("BTC", "GBP", Mean).Build(); err == nil {
		t.Fatal("Build on an empty builder should fail")
	}
}

func TestReadDump(t *testing.T) {
	wide := abledger.MustParseDatetime("1000-01-01")
	late := abledger.MustParseDatetime("2099-12-31")

	t.Run("raw", func(t *testing.T) {
		b := NewBuilder("BTC", "GBP", Mean)
		// 1467368700 = 2016-07-01 10:25:00 UTC
		content := "1467368700,450,2\n1467369000,460,2\n"
		if err := ReadDump(strings.NewReader(content), "btc.raw", DumpRaw, b, wide, late, 0); err != nil {
			t.Fatalf("ReadDump failed: %v", err)
		}
		tab, err := b.Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		wantRate(t, tab, "2016-07-01-10-00", 455)
	})

	t.Run("date range filter", func(t *testing.T) {
		b := NewBuilder("BTC", "GBP", Mean)
		content := "1467368700,450,2\n1467369000,460,2\n"
		end := abledger.MustParseDatetime("2016-07-01-10-26")
		if err := ReadDump(strings.NewReader(content), "btc.raw", DumpRaw, b, wide, end, 0); err != nil {
			t.Fatalf("ReadDump failed: %v", err)
		}
		if b.Len() != 1 {
			t.Errorf("buckets = %d, want 1 (second sample past end)", b.Len())
		}
	})

	t.Run("polo filters by market", func(t *testing.T) {
		b := NewBuilder("ETH", "BTC", Mean)
		content := "Date,Market,Category,Type,Price,Amount,Total\n" +
			"2016-07-01 10:05:00,ETH/BTC,Exchange,Buy,0.02,10,0.2\n" +
			"2016-07-01 10:06:00,XMR/BTC,Exchange,Buy,0.01,10,0.1\n"
		if err := ReadDump(strings.NewReader(content), "polo.polo", DumpPoloniex, b, wide, late, 0); err != nil {
			t.Fatalf("ReadDump failed: %v", err)
		}
		tab, err := b.Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if tab.Len() != 1 {
			t.Fatalf("entries = %d, want 1 (other market filtered)", tab.Len())
		}
		wantRate(t, tab, "2016-07-01-10-00", 0.02)
	})

	t.Run("krkn filters by pair code", func(t *testing.T) {
		b := NewBuilder("BTC", "EUR", Mean)
		content := `"txid","ordertxid","pair","time","type","ordertype","price","vol"` + "\n" +
			`"T1","O1","XXBTZEUR","2016-07-01 10:05:00.123","buy","limit","600","0.5"` + "\n" +
			`"T2","O2","XETHXXBT","2016-07-01 10:06:00","buy","limit","0.02","10"` + "\n"
		if err := ReadDump(strings.NewReader(content), "k.krkn", DumpKraken, b, wide, late, 0); err != nil {
			t.Fatalf("ReadDump failed: %v", err)
		}
		tab, err := b.Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		wantRate(t, tab, "2016-07-01-10-00", 600)
	})

	t.Run("explicit weight overrides volume", func(t *testing.T) {
		b := NewBuilder("BTC", "GBP", Mean)
		content := "1467368700,100,1000\n1467369000,200,1\n"
		if err := ReadDump(strings.NewReader(content), "btc.raw", DumpRaw, b, wide, late, 1); err != nil {
			t.Fatalf("ReadDump failed: %v", err)
		}
		tab, err := b.Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		wantRate(t, tab, "2016-07-01-10-00", 150)
	})
}

func TestDumpFormatFromExt(t *testing.T) {
	f, err := DumpFormatFromExt("history/btcgbp.raw")
	if err != nil || f != DumpRaw {
		t.Errorf("DumpFormatFromExt = %v, %v; want raw", f, err)
	}
	if _, err := DumpFormatFromExt("noext"); err == nil {
		t.Error("missing extension should fail")
	}
}

func TestCombine(t *testing.T) {
	ab := NewTable("BTC", "USD")
	ab.Set(abledger.MustParseDatetime("2016-07-01-10-00"), dec(600))
	ab.Set(abledger.MustParseDatetime("2016-07-01-11-00"), dec(610))
	bc := NewTable("USD", "GBP")
	bc.Set(abledger.MustParseDatetime("2016-07-01-10-00"), dec(0.75))

	out, err := Combine(ab, bc)
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if out.From != "BTC" || out.To != "GBP" {
		t.Errorf("pair = %s->%s, want BTC->GBP", out.From, out.To)
	}
	if out.Len() != 1 {
		t.Fatalf("entries = %d, want 1 (11-00 missing from the second link)", out.Len())
	}
	wantRate(t, out, "2016-07-01-10-00", 450)

	if _, err := Combine(ab, ab); err == nil {
		t.Error("mismatched chain should fail")
	}
}

func TestFetchPoloniexChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"date": 1467368400, "weightedAverage": 450.5, "volume": 2},
			{"date": 1467372000, "weightedAverage": 0, "volume": 0},
			{"date": 1467375600, "weightedAverage": 452, "volume": 1}
		]`))
	}))
	defer srv.Close()

	b := NewBuilder("BTC", "GBP", Mean)
	// point the fetch at the test server by rewriting the request.
	client := &http.Client{Transport: rewriteHost(srv.URL)}
	start := abledger.MustParseDatetime("2016-07-01")
	end := abledger.MustParseDatetime("2016-07-02")
	if err := FetchPoloniexChart(client, b, start, end); err != nil {
		t.Fatalf("FetchPoloniexChart failed: %v", err)
	}
	tab, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// zero candle skipped, its hour gap-filled from the previous one.
	wantRate(t, tab, "2016-07-01-10-00", 450.5)
	wantRate(t, tab, "2016-07-01-11-00", 450.5)
	wantRate(t, tab, "2016-07-01-12-00", 452)
}
