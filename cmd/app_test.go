package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aeron/abledger"
)

// withFlag overrides a global flag for the duration of the test.
func withFlag(t *testing.T, flag *string, value string) {
	t.Helper()
	old := *flag
	*flag = value
	t.Cleanup(func() { *flag = old })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "btcgbp.csv"),
		"BTC, GBP\n2016-07-01-10-00, 450\n")
	ledger := filepath.Join(dir, "kraken.csv")
	writeFile(t, ledger,
		"Date, From-Currency, Amount, To-Currency, Value\n"+
			"01/07/2016 10:20:30, GBP, -450, BTC, 1\n"+
			"01/07/2016 11:20:30, GBP, -450, BTC, 1\n")

	withFlag(t, conversionsGlob, filepath.Join(dir, "btcgbp.csv"))
	withFlag(t, configFile, "")
	withFlag(t, accountsFile, "")

	// an end date between the two records drops the second one.
	end := abledger.MustParseDatetime("2016-07-01-11-00")
	book, err := LoadBook(end, []string{ledger})
	if err != nil {
		t.Fatalf("LoadBook failed: %v", err)
	}
	if err := book.ProcessAll(); err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	acc := book.Account("krakenBTC")
	if acc == nil {
		t.Fatal("no krakenBTC account")
	}
	if got := acc.BalanceAt(end); !got.Equal(abledger.Q(1)) {
		t.Errorf("krakenBTC balance = %s, want 1", got)
	}
	if acc := book.Account("GBP"); acc == nil {
		t.Error("no GBP account")
	}
}

func TestLoadBook_Bootstrap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "btcgbp.csv"),
		"BTC, GBP\n2016-07-01-10-00, 450\n")
	accounts := filepath.Join(dir, "opening.accounts")
	writeFile(t, accounts, "krakenBTC, BTC, 2, GBP, 800\n")

	withFlag(t, conversionsGlob, filepath.Join(dir, "btcgbp.csv"))
	withFlag(t, configFile, "")
	withFlag(t, accountsFile, accounts)
	withFlag(t, startFlag, "2016-01-01")

	end := abledger.MustParseDatetime("2017-01-01")
	book, err := LoadBook(end, nil)
	if err != nil {
		t.Fatalf("LoadBook failed: %v", err)
	}
	if err := book.ProcessAll(); err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}
	acc := book.Account("krakenBTC")
	if acc == nil {
		t.Fatal("no krakenBTC account")
	}
	if got := acc.BalanceAt(end); !got.Equal(abledger.Q(2)) {
		t.Errorf("bootstrapped balance = %s, want 2", got)
	}
	if got := acc.CostAt(end); !got.Equal(abledger.M(800, "GBP")) {
		t.Errorf("bootstrapped cost = %s, want 800 GBP", got)
	}
}

func TestLoadConverter_BadGlob(t *testing.T) {
	withFlag(t, conversionsGlob, "[")
	if _, err := LoadConverter(); err == nil {
		t.Fatal("malformed glob should fail")
	}
}
