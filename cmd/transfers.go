package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aeron/abledger"
	"github.com/aeron/abledger/renderer"
	"github.com/google/subcommands"
)

// transfersCmd prints the transfer reconciliation report.
type transfersCmd struct {
	end     string
	outFile string
}

func (*transfersCmd) Name() string     { return "transfers" }
func (*transfersCmd) Synopsis() string { return "report cross-exchange transfer reconciliation" }
func (*transfersCmd) Usage() string {
	return `abl transfers [-d <date>] [-o <file>] <ledger files>

  Parses the ledger files and reports which transfers were matched away as
  duplicates and which remain unmatched. Unmatched transfers usually mean a
  missing export file.
`
}

func (c *transfersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.end, "d", "2999-12-31", "End date, inclusive. Records after it are ignored.")
	f.StringVar(&c.outFile, "o", "", "Also write the report as CSV to this file.")
}

func (c *transfersCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "no ledger files given")
		return subcommands.ExitUsageError
	}
	end, err := abledger.ParseDatetime(c.end)
	if err != nil {
		return fail(fmt.Errorf("bad end date: %w", err))
	}

	book, err := LoadBook(end, f.Args())
	if err != nil {
		return fail(err)
	}
	report := book.TransferReport()

	if c.outFile != "" {
		out, err := os.Create(c.outFile)
		if err != nil {
			return fail(err)
		}
		err = abledger.EncodeTransfers(out, report)
		out.Close()
		if err != nil {
			return fail(err)
		}
	}

	printMarkdown(renderer.TransfersMarkdown(report))
	return subcommands.ExitSuccess
}
