package abledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testBook(t *testing.T) *Book {
	t.Helper()
	conv := NewConverter()
	for _, d := range []string{"2020-01-10-12-00", "2020-03-01-10-00", "2020-03-02-09-00"} {
		conv.AddRate("BTC", "GBP", MustParseDatetime(d), decimal.NewFromInt(1000))
		conv.AddRate("ETH", "GBP", MustParseDatetime(d), decimal.NewFromInt(100))
	}
	return NewBook(DefaultConfig(), conv)
}

func TestBook_PostSimpleTrade(t *testing.T) {
	b := testBook(t)
	rec := Record{
		Date:      MustParseDatetime("2020-01-10-12-30"),
		Currency1: "GBP", Amount1: Q(-1500), Account1: "GBP",
		Currency2: "BTC", Amount2: Q(1), Account2: "BTC",
	}
	if err := b.Post(rec, "trades.csv"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if err := b.ProcessAll(); err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	if got := b.AccountNames(); len(got) != 2 || got[0] != "BTC" || got[1] != "GBP" {
		t.Fatalf("accounts = %v, want [BTC GBP]", got)
	}
	end := MustParseDatetime("2020-12-31")
	if got := b.Account("BTC").BalanceAt(end); !got.Equal(Q(1)) {
		t.Errorf("BTC balance = %s, want 1", got)
	}
	if got := b.Account("BTC").CostAt(end); !got.Equal(M(1500, "GBP")) {
		t.Errorf("BTC cost = %s, want 1500", got)
	}
	if got := b.Account("GBP").CostAt(end); !got.Equal(M(-1500, "GBP")) {
		t.Errorf("GBP cost = %s, want -1500", got)
	}
}

func TestBook_NonBaseTradePostsBaseOffsets(t *testing.T) {
	b := testBook(t)
	rec := Record{
		Date:      MustParseDatetime("2020-01-10-12-30"),
		Currency1: "BTC", Amount1: Q(-1), Account1: "BTC",
		Currency2: "ETH", Amount2: Q(10), Account2: "ETH",
	}
	if err := b.Post(rec, "trades.csv"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if err := b.ProcessAll(); err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	// the BTC leg wins valuation (priority 10 over unconfigured-but-rated
	// ETH): -1000 and +1000, plus two offsets of +1000 and -1000 on GBP.
	if got := b.AccountNames(); len(got) != 3 {
		t.Fatalf("accounts = %v, want BTC, ETH and GBP", got)
	}
	end := MustParseDatetime("2020-12-31")
	if got := b.Account("GBP").BalanceAt(end); !got.IsZero() {
		t.Errorf("GBP offset balance = %s, want 0", got)
	}

	s, err := b.NewSummary(MustParseDatetime("2020-01-01"), end)
	if err != nil {
		t.Fatalf("NewSummary failed: %v", err)
	}
	if !s.CheckOK() {
		t.Errorf("cost conservation check failed: error = %s", s.CheckError())
	}
}

func TestBook_AccountPrefixing(t *testing.T) {
	b := testBook(t)
	rec := Record{
		Date:      MustParseDatetime("2020-01-10-12-30"),
		Currency1: "GBP", Amount1: Q(-1500), Account1: "GBP",
		Currency2: "BTC", Amount2: Q(1), Account2: "BTC",
	}
	if err := b.Post(rec, "ledgers/kraken.2020.csv"); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if b.Account("krakenBTC") == nil {
		t.Errorf("accounts = %v, want the BTC leg under krakenBTC", b.AccountNames())
	}
	if b.Account("GBP") == nil {
		t.Errorf("accounts = %v, want the base leg unprefixed", b.AccountNames())
	}
}

func TestBook_TransferDeduplication(t *testing.T) {
	b := testBook(t)
	out := Record{
		Date:      MustParseDatetime("2020-03-01-10-30"),
		Currency1: "BTC", Amount1: Q(-2), Account1: "kraken BTC",
		Currency2: "BTC", Amount2: Q(2), Account2: "poloniex BTC",
	}
	out.FlagAsTransfer()
	// the same movement seen from the receiving file, a day later and with
	// the legs swapped.
	in := Record{
		Date:      MustParseDatetime("2020-03-02-09-15"),
		Currency1: "BTC", Amount1: Q(2), Account1: "poloniex BTC",
		Currency2: "BTC", Amount2: Q(-2), Account2: "kraken BTC",
	}
	in.FlagAsTransfer()

	if err := b.Post(out, "kraken.csv"); err != nil {
		t.Fatalf("Post(out) failed: %v", err)
	}
	if err := b.Post(in, "poloniex.csv"); err != nil {
		t.Fatalf("Post(in) failed: %v", err)
	}
	if err := b.ProcessAll(); err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	// only the first sighting is posted.
	end := MustParseDatetime("2020-12-31")
	if got := b.Account("kraken BTC").BalanceAt(end); !got.Equal(Q(-2)) {
		t.Errorf("kraken BTC balance = %s, want -2", got)
	}
	if got := b.Account("poloniex BTC").BalanceAt(end); !got.Equal(Q(2)) {
		t.Errorf("poloniex BTC balance = %s, want 2", got)
	}

	report := b.TransferReport()
	if len(report) != 2 {
		t.Fatalf("transfer report length = %d, want 2", len(report))
	}
	if report[0].MatchedWith != report[1].ID || report[1].MatchedWith != report[0].ID {
		t.Errorf("transfers not matched to each other: %+v", report)
	}
}

func TestBook_NegligibleAndInvalidRecords(t *testing.T) {
	b := testBook(t)
	d := MustParseDatetime("2020-01-10-12-30")

	tiny := Record{Date: d, Currency1: "GBP", Amount1: Q(1e-9), Currency2: "BTC", Amount2: Q(-1e-10)}
	if err := b.Post(tiny, "trades.csv"); err != nil {
		t.Fatalf("negligible record should be dropped silently, got %v", err)
	}
	if len(b.AccountNames()) != 0 {
		t.Errorf("negligible record created accounts: %v", b.AccountNames())
	}

	sameDir := Record{Date: d, Currency1: "GBP", Amount1: Q(100), Currency2: "BTC", Amount2: Q(1)}
	if err := b.Post(sameDir, "trades.csv"); err == nil {
		t.Fatal("same-direction record should be rejected")
	}
}

func TestBook_Bootstrap(t *testing.T) {
	b := testBook(t)
	in := strings.NewReader(
		"kraken BTC, BTC, 2, GBP, 1800\n" +
			", GBP, 500, GBP, 500\n")
	start := MustParseDatetime("2020-01-01")
	if err := b.Bootstrap(in, "start.accounts", start); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if err := b.ProcessAll(); err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	end := MustParseDatetime("2020-12-31")
	if got := b.Account("kraken BTC").BalanceAt(end); !got.Equal(Q(2)) {
		t.Errorf("kraken BTC balance = %s, want 2", got)
	}
	// the GBP position plus the -1800 offset of the BTC position.
	if got := b.Account("GBP").CostAt(end); !got.Equal(M(-1300, "GBP")) {
		t.Errorf("GBP cost = %s, want -1300", got)
	}
}

func TestBook_BootstrapRejectsWrongBase(t *testing.T) {
	b := testBook(t)
	in := strings.NewReader("kraken BTC, BTC, 2, USD, 1800\n")
	if err := b.Bootstrap(in, "start.accounts", MustParseDatetime("2020-01-01")); err == nil {
		t.Fatal("Bootstrap accepted a foreign base currency")
	}
}

func TestBook_SourcePrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ledgers/poloniex.2017.csv", "poloniex"},
		{"kraken.csv", "kraken"},
		{"trades", "trades"},
		{"/abs/path/bitstamp.csv", "bitstamp"},
	}
	for _, tc := range cases {
		if got := SourcePrefix(tc.in); got != tc.want {
			t.Errorf("SourcePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
