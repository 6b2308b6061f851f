// Package cmd implements the CLI application computing capital gains from
// trading ledgers.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aeron/abledger"
	"github.com/aeron/abledger/parse"
	"github.com/aeron/abledger/rates"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Register the subcommands. A main package calls Register() and then
// Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&gainsCmd{}, "reporting")
	c.Register(&summaryCmd{}, "reporting")
	c.Register(&transfersCmd{}, "reporting")

	c.Register(&ratesBuildCmd{}, "rates")
	c.Register(&ratesCombineCmd{}, "rates")

	c.Register(&importKrakenCmd{}, "import")
	c.Register(&importPoloniexCmd{}, "import")

	c.Register(&topicCmd{}, "documentation")
	c.Register(&assistCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables for the shared flags.

var configFile = flag.String("config", "", "Path to the YAML configuration file. Built-in defaults when empty.")
var conversionsGlob = flag.String("conversions", "conversions/*.csv", "Glob of hourly conversion table files.")
var accountsFile = flag.String("accounts", "", "Path to a CSV file of opening account positions.")
var startFlag = flag.String("start", "2009-01-03", "Date opening positions are posted at.")

// LoadConverter loads every conversion table matching the -conversions glob
// into a single converter.
func LoadConverter() (*abledger.Converter, error) {
	conv := abledger.NewConverter()
	files, err := filepath.Glob(*conversionsGlob)
	if err != nil {
		return nil, fmt.Errorf("bad conversions glob %q: %w", *conversionsGlob, err)
	}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		tab, err := rates.DecodeTable(f, file)
		f.Close()
		if err != nil {
			return nil, err
		}
		tab.AddTo(conv)
	}
	return conv, nil
}

// LoadBook builds a book from the shared flags and posts every record of the
// given ledger files, dropping records after end. The book is not processed.
func LoadBook(end abledger.Datetime, ledgerFiles []string) (*abledger.Book, error) {
	cfg, err := abledger.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	conv, err := LoadConverter()
	if err != nil {
		return nil, err
	}
	book := abledger.NewBook(cfg, conv)

	if *accountsFile != "" {
		start, err := abledger.ParseDatetime(*startFlag)
		if err != nil {
			return nil, fmt.Errorf("bad -start date: %w", err)
		}
		f, err := os.Open(*accountsFile)
		if err != nil {
			return nil, err
		}
		err = book.Bootstrap(f, *accountsFile, start)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	parser := &parse.Parser{Base: cfg.BaseCurrency, Conv: conv}
	for _, file := range ledgerFiles {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		recs, err := parser.Records(f, file)
		f.Close()
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			if rec.Date.After(end) {
				continue
			}
			if err := book.Post(rec, file); err != nil {
				return nil, err
			}
		}
	}
	return book, nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// parseRange parses the -s and -d flags of reporting commands, with an
// all-time default.
func parseRange(start, end string) (s, e abledger.Datetime, err error) {
	s, err = abledger.ParseDatetime(start)
	if err != nil {
		return s, e, fmt.Errorf("bad start date: %w", err)
	}
	e, err = abledger.ParseDatetime(end)
	if err != nil {
		return s, e, fmt.Errorf("bad end date: %w", err)
	}
	return s, e, nil
}
