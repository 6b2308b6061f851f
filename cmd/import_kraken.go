package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aeron/abledger/parse"
	"github.com/google/subcommands"
)

// importKrakenCmd converts a Kraken ledger export into raw ledger lines.
type importKrakenCmd struct {
	outFile string
}

func (*importKrakenCmd) Name() string { return "import-kraken" }
func (*importKrakenCmd) Synopsis() string {
	return "convert a Kraken ledger export into raw ledger lines"
}
func (*importKrakenCmd) Usage() string {
	return `abl import-kraken [-o <file>] <ledgers.csv>

  Converts the deposits, withdrawals and internal transfers of a Kraken
  ledger export into the raw ledger format, ready to be fed to 'gains'
  alongside the trade files.
`
}

func (c *importKrakenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outFile, "o", "", "Output file. Stdout when empty.")
}

func (c *importKrakenCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expecting exactly one Kraken ledger export file")
		return subcommands.ExitUsageError
	}
	source := f.Arg(0)
	in, err := os.Open(source)
	if err != nil {
		return fail(err)
	}
	defer in.Close()

	w := os.Stdout
	if c.outFile != "" {
		out, err := os.Create(c.outFile)
		if err != nil {
			return fail(err)
		}
		defer out.Close()
		w = out
	}
	if err := parse.ConvertKrakenLedger(w, in, source); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// importPoloniexCmd converts Poloniex deposit or withdrawal histories into
// raw ledger lines.
type importPoloniexCmd struct {
	withdrawals bool
	outFile     string
}

func (*importPoloniexCmd) Name() string { return "import-poloniex" }
func (*importPoloniexCmd) Synopsis() string {
	return "convert a Poloniex deposit or withdrawal history into raw ledger lines"
}
func (*importPoloniexCmd) Usage() string {
	return `abl import-poloniex [-withdrawals] [-o <file>] <history.csv>

  Converts a Poloniex deposit history (or withdrawal history, with
  -withdrawals) into raw ledger transfer lines. Entries not marked COMPLETE
  are skipped.
`
}

func (c *importPoloniexCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.withdrawals, "withdrawals", false, "The file is a withdrawal history.")
	f.StringVar(&c.outFile, "o", "", "Output file. Stdout when empty.")
}

func (c *importPoloniexCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expecting exactly one Poloniex history file")
		return subcommands.ExitUsageError
	}
	source := f.Arg(0)
	in, err := os.Open(source)
	if err != nil {
		return fail(err)
	}
	defer in.Close()

	w := os.Stdout
	if c.outFile != "" {
		out, err := os.Create(c.outFile)
		if err != nil {
			return fail(err)
		}
		defer out.Close()
		w = out
	}

	dir := parse.PoloniexDeposits
	if c.withdrawals {
		dir = parse.PoloniexWithdrawals
	}
	skipped, err := parse.ConvertPoloniexHistory(w, in, source, dir)
	if err != nil {
		return fail(err)
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d incomplete or errored entries.\n", skipped)
	}
	return subcommands.ExitSuccess
}
