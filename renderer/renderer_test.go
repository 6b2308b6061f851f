package renderer

import (
	"strings"
	"testing"

	"github.com/aeron/abledger"
)

func TestSummaryMarkdown(t *testing.T) {
	s := &abledger.Summary{
		Base:  "GBP",
		Start: abledger.MustParseDatetime("2016-04-06"),
		End:   abledger.MustParseDatetime("2017-04-05"),
		Accounts: []abledger.AccountSummary{
			{
				Account:    "krakenBTC",
				Currency:   "BTC",
				Balance:    abledger.Q(0.5),
				Cost:       abledger.M(200, "GBP"),
				Proceeds:   abledger.M(900, "GBP"),
				Profit:     abledger.M(300, "GBP"),
				Chargeable: abledger.M(300, "GBP"),
				Disposals:  2,
			},
		},
		InitialCost:     abledger.M(0, "GBP"),
		FinalCost:       abledger.M(0.001, "GBP"),
		TotalProfit:     abledger.M(300, "GBP"),
		TotalProceeds:   abledger.M(900, "GBP"),
		TotalChargeable: abledger.M(300, "GBP"),
		Disposals:       2,
	}

	out := SummaryMarkdown(s)
	for _, want := range []string{
		"# Gains Summary 2016-04-06-00-00 to 2017-04-05-00-00",
		"krakenBTC",
		"0.50000000",
		"900.00",
		"## Totals",
		"Chargeable gain",
		"Cost conservation check: PASS",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary markdown missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryMarkdown_FailedCheck(t *testing.T) {
	s := &abledger.Summary{
		Base:        "GBP",
		Start:       abledger.MustParseDatetime("2016-04-06"),
		End:         abledger.MustParseDatetime("2017-04-05"),
		InitialCost: abledger.M(0, "GBP"),
		FinalCost:   abledger.M(5, "GBP"),
	}
	if !strings.Contains(SummaryMarkdown(s), "Cost conservation check: FAIL") {
		t.Error("a 5 GBP conservation error should fail the check")
	}
}

func TestTransfersMarkdown(t *testing.T) {
	report := []abledger.TransferStatus{
		{
			ID:          "t1",
			Date:        abledger.MustParseDatetime("2016-07-01-10-00"),
			Fingerprint: "0.50000 krakenBTC -> poloniexBTC",
			Source:      "kraken.csv",
			MatchedWith: "t2",
		},
		{
			ID:          "t3",
			Date:        abledger.MustParseDatetime("2016-07-02-10-00"),
			Fingerprint: "1.00000 poloniexBTC -> bitstampBTC",
			Source:      "poloniex.csv",
		},
	}

	out := TransfersMarkdown(report)
	if !strings.Contains(out, "2 transfers, 1 unmatched.") {
		t.Errorf("missing counts line:\n%s", out)
	}
	if !strings.Contains(out, "## Unmatched") || !strings.Contains(out, "## Matched") {
		t.Errorf("missing sections:\n%s", out)
	}
	if !strings.Contains(out, "1.00000 poloniexBTC -> bitstampBTC") {
		t.Errorf("unmatched fingerprint missing:\n%s", out)
	}
}

func TestTransfersMarkdown_Empty(t *testing.T) {
	out := TransfersMarkdown(nil)
	if !strings.Contains(out, "0 transfers, 0 unmatched.") {
		t.Errorf("empty report rendering wrong:\n%s", out)
	}
	if strings.Contains(out, "## Matched") {
		t.Error("no sections expected for an empty report")
	}
}
