package abledger

import "testing"

func TestFingerprint_DirectionIndependent(t *testing.T) {
	// the sending side reports a negative first leg, the receiving side a
	// positive one; both must produce the same fingerprint.
	sent := Fingerprint(Q(-1.23456), "kraken BTC", "poloniex BTC")
	received := Fingerprint(Q(1.23456), "poloniex BTC", "kraken BTC")
	if sent != received {
		t.Errorf("fingerprints differ:\n  sent:     %s\n  received: %s", sent, received)
	}
	want := "1.23456 kraken BTC -> poloniex BTC"
	if sent != want {
		t.Errorf("fingerprint = %q, want %q", sent, want)
	}
}

func TestTransferRegistry_Deduplication(t *testing.T) {
	fp := Fingerprint(Q(-2), "kraken BTC", "poloniex BTC")
	day := MustParseDatetime("2020-03-01-10-00")

	cases := []struct {
		name          string
		secondDate    Datetime
		secondFP      string
		secondSource  string
		wantDuplicate bool
	}{
		{"same day, other file", day, fp, "poloniex.csv", true},
		{"previous day, other file", day.AddDays(-1), fp, "poloniex.csv", true},
		{"next day, other file", day.AddDays(1), fp, "poloniex.csv", true},
		{"two days later", day.AddDays(2), fp, "poloniex.csv", false},
		{"same file", day, fp, "kraken.csv", false},
		{"different amount", day, Fingerprint(Q(-3), "kraken BTC", "poloniex BTC"), "poloniex.csv", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewTransferRegistry()
			if dup := reg.Register("t1", day, fp, "kraken.csv"); dup {
				t.Fatal("first registration reported as duplicate")
			}
			if dup := reg.Register("t2", tc.secondDate, tc.secondFP, tc.secondSource); dup != tc.wantDuplicate {
				t.Errorf("second registration duplicate = %v, want %v", dup, tc.wantDuplicate)
			}
		})
	}
}

func TestTransferRegistry_MatchConsumesCandidate(t *testing.T) {
	fp := Fingerprint(Q(-2), "kraken BTC", "poloniex BTC")
	day := MustParseDatetime("2020-03-01-10-00")

	reg := NewTransferRegistry()
	reg.Register("t1", day, fp, "kraken.csv")
	if !reg.Register("t2", day, fp, "poloniex.csv") {
		t.Fatal("t2 should have matched t1")
	}
	// t1 is spent: a third identical registration starts a fresh pair.
	if reg.Register("t3", day, fp, "poloniex.csv") {
		t.Error("t3 matched an already-consumed candidate")
	}
	if !reg.Register("t4", day, fp, "kraken.csv") {
		t.Error("t4 should have matched t3")
	}

	if other, ok := reg.Matched("t1"); !ok || other != "t2" {
		t.Errorf("Matched(t1) = %q, %v; want t2, true", other, ok)
	}
	if other, ok := reg.Matched("t2"); !ok || other != "t1" {
		t.Errorf("Matched(t2) = %q, %v; want t1, true", other, ok)
	}
}

func TestTransferRegistry_Report(t *testing.T) {
	fp := Fingerprint(Q(-2), "kraken BTC", "poloniex BTC")
	day := MustParseDatetime("2020-03-01-10-00")

	reg := NewTransferRegistry()
	reg.Register("t1", day, fp, "kraken.csv")
	reg.Register("t2", day.AddDays(1), fp, "poloniex.csv")
	reg.Register("t3", day, Fingerprint(Q(-5), "a", "b"), "kraken.csv")

	report := reg.Report()
	if len(report) != 3 {
		t.Fatalf("report length = %d, want 3", len(report))
	}
	if report[0].ID != "t1" || report[1].ID != "t2" || report[2].ID != "t3" {
		t.Errorf("report order = %s, %s, %s; want t1, t2, t3",
			report[0].ID, report[1].ID, report[2].ID)
	}
	if report[0].MatchedWith != "t2" {
		t.Errorf("t1 matched with %q, want t2", report[0].MatchedWith)
	}
	if report[2].MatchedWith != "" {
		t.Errorf("t3 matched with %q, want unmatched", report[2].MatchedWith)
	}
}
