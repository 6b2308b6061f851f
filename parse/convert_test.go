package parse

import (
	"strings"
	"testing"
)

func TestConvertKrakenLedger(t *testing.T) {
	content := `"txid","refid","time","type","aclass","asset","amount","fee","balance"` + "\n" +
		`"L1","R1","2016-07-01 10:20:30","deposit","currency","XXBT","0.5000","0.0000","0.5000"` + "\n" +
		`"L2","R2","2016-07-02 11:00:00","withdrawal","currency","XXBT","-0.2000","0.0005","0.2995"` + "\n" +
		`"L3","R3","2016-07-03 09:00:00","trade","currency","XXBT","0.1","0","0.3995"` + "\n" +
		`"L4","R4","2016-07-04 09:00:00","transfer","currency","XETH","1.0","0","1.0"` + "\n"

	var out strings.Builder
	if err := ConvertKrakenLedger(&out, strings.NewReader(content), "ledgers.csv"); err != nil {
		t.Fatalf("ConvertKrakenLedger failed: %v", err)
	}
	want := "Date, Base Currency, Value, Trade Currency, Amount, Transfer Info\n" +
		"2016-07-01-10-00, BTC, -0.5, BTC, 0.5, ->kraken\n" +
		"2016-07-02-11-00, BTC, 0.2, BTC, -0.2, ->kraken\n" +
		"2016-07-02-11-00, GBP, 0, BTC, -0.0005,\n" +
		"2016-07-04-09-00, GBP, 0, ETH, 1,\n"
	if out.String() != want {
		t.Errorf("converted:\n%s\nwant:\n%s", out.String(), want)
	}

	// the output must parse back as a raw ledger file.
	p := testParser(t)
	recs, err := p.Records(strings.NewReader(out.String()), "kraken.transfers.csv")
	if err != nil {
		t.Fatalf("reparsing converted output failed: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	if !recs[0].IsTransfer || recs[0].Account2 != "krakenBTC" {
		t.Errorf("record 0 = %+v, want transfer into krakenBTC", recs[0])
	}
}

func TestConvertKrakenLedger_BadHeader(t *testing.T) {
	var out strings.Builder
	err := ConvertKrakenLedger(&out, strings.NewReader("nope\n"), "ledgers.csv")
	if err == nil {
		t.Fatal("unexpected header should fail")
	}
}

func TestConvertPoloniexHistory(t *testing.T) {
	content := "Date,Currency,Amount,Address,Status\n" +
		"2016-07-01 10:20:30,BTC,0.5,1abc,COMPLETE\n" +
		"2016-07-02 11:00:00,ETH,2,0xdef,PENDING\n" +
		"2016-07-03 12:00:00,BTC,0.1,1abc,COMPLETE: ERROR\n"

	var out strings.Builder
	skipped, err := ConvertPoloniexHistory(&out, strings.NewReader(content), "depositHistory.csv", PoloniexDeposits)
	if err != nil {
		t.Fatalf("ConvertPoloniexHistory failed: %v", err)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	want := "Date, Base Currency, Value, Trade Currency, Amount, Transfer Info\n" +
		"2016-07-01-10-00, BTC, -0.5, BTC, 0.5, ->poloniex\n"
	if out.String() != want {
		t.Errorf("converted:\n%s\nwant:\n%s", out.String(), want)
	}

	out.Reset()
	if _, err := ConvertPoloniexHistory(&out, strings.NewReader(content), "withdrawalHistory.csv", PoloniexWithdrawals); err != nil {
		t.Fatalf("ConvertPoloniexHistory failed: %v", err)
	}
	if !strings.Contains(out.String(), "2016-07-01-10-00, BTC, -0.5, BTC, 0.5, poloniex->\n") {
		t.Errorf("withdrawal output wrong:\n%s", out.String())
	}
}
