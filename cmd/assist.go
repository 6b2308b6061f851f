package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aeron/abledger"
	"github.com/aeron/abledger/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd starts the interactive AI assistant over the processed ledgers.
type assistCmd struct {
	end string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `abl assist [-d <date>] <ledger files> [-- <question>]

  Processes the ledger files and starts an interactive session with an
  assistant that can report gains, balances and reconciliation status.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.end, "d", "2999-12-31", "End date, inclusive. Records after it are ignored.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var files, question []string
	for i, arg := range f.Args() {
		if arg == "--" {
			question = f.Args()[i+1:]
			break
		}
		files = append(files, arg)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no ledger files given")
		return subcommands.ExitUsageError
	}

	end, err := abledger.ParseDatetime(c.end)
	if err != nil {
		return fail(fmt.Errorf("bad end date: %w", err))
	}
	book, err := LoadBook(end, files)
	if err != nil {
		return fail(err)
	}
	if err := book.ProcessAll(); err != nil {
		return fail(err)
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("initializing the Gemini client: %w", err))
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewResearcher(), agent.NewAccountant(book))
	if err := a.Run(ctx, client, strings.Join(question, " ")); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
