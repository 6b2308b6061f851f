package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aeron/abledger"
	"github.com/aeron/abledger/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	start  string
	end    string
	outDir string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "compute gains and write per-account reports" }
func (*gainsCmd) Usage() string {
	return `abl gains [-s <date>] [-d <date>] [-o <dir>] <ledger files>

  Parses the ledger files, matches and pools every account's postings, writes
  one CSV report per account into the output directory, and prints the gains
  summary for the date range.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "1000-01-01", "Start date of the reporting range, inclusive.")
	f.StringVar(&c.end, "d", "2999-12-31", "End date of the reporting range, inclusive. Records after it are ignored.")
	f.StringVar(&c.outDir, "o", "reports", "Directory the per-account CSV reports are written into.")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if err := os.MkdirAll(c.outDir, 0755); err != nil {
		return fail(err)
	}
	for _, name := range book.AccountNames() {
		if err := writeAccountReport(c.outDir, book.Account(name)); err != nil {
			return fail(err)
		}
	}

	s, err := book.NewSummary(start, end)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.SummaryMarkdown(s))
	if !s.CheckOK() {
		fmt.Fprintf(os.Stderr, "Warning: cost conservation check failed by %s %s\n",
			s.CheckError().StringFixed(4), s.Base)
	}
	return subcommands.ExitSuccess
}

func writeAccountReport(dir string, acc *abledger.Account) error {
	f, err := os.Create(filepath.Join(dir, acc.Name()+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return abledger.EncodeReport(f, acc.Rows())
}
