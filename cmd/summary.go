package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aeron/abledger/renderer"
	"github.com/google/subcommands"
)

// summaryCmd prints the gains summary without writing report files. Handy
// for a tax-year range over an already-checked set of ledgers.
type summaryCmd struct {
	start string
	end   string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the gains summary for a date range" }
func (*summaryCmd) Usage() string {
	return `abl summary [-s <date>] [-d <date>] <ledger files>

  Parses the ledger files and prints per-account balances, costs, proceeds,
  profits and chargeable gains for the date range, with portfolio totals.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "1000-01-01", "Start date of the reporting range, inclusive.")
	f.StringVar(&c.end, "d", "2999-12-31", "End date of the reporting range, inclusive. Records after it are ignored.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "no ledger files given")
		return subcommands.ExitUsageError
	}
	start, end, err := parseRange(c.start, c.end)
	if err != nil {
		return fail(err)
	}

	book, err := LoadBook(end, f.Args())
	if err != nil {
		return fail(err)
	}
	if err := book.ProcessAll(); err != nil {
		return fail(err)
	}
	s, err := book.NewSummary(start, end)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.SummaryMarkdown(s))
	return subcommands.ExitSuccess
}
