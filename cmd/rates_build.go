package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/aeron/abledger/rates"
	"github.com/google/subcommands"
)

// ratesBuildCmd assembles an hourly conversion table from trade dumps or
// the Poloniex chart API.
type ratesBuildCmd struct {
	from    string
	to      string
	method  string
	start   string
	end     string
	weight  float64
	fetch   bool
	outFile string
}

func (*ratesBuildCmd) Name() string     { return "rates-build" }
func (*ratesBuildCmd) Synopsis() string { return "build an hourly conversion table" }
func (*ratesBuildCmd) Usage() string {
	return `abl rates-build -from <currency> -to <currency> [-method <m>] [-s <date>] [-d <date>] [-w <weight>] [-fetch] [-o <file>] [dump files]

  Buckets trade prices per hour and collapses each bucket into one rate.
  Dump files are read in the format their extension names (.raw, .csv, .dat,
  .polo, .krkn); -fetch pulls hourly candles from the Poloniex chart API
  instead.
`
}

func (c *ratesBuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Currency the table converts from.")
	f.StringVar(&c.to, "to", "", "Currency the table converts to.")
	f.StringVar(&c.method, "method", "mean", "Bucket collapse method (mean, median, robust).")
	f.StringVar(&c.start, "s", "1000-01-01", "Drop samples before this date.")
	f.StringVar(&c.end, "d", "2999-12-31", "Drop samples after this date.")
	f.Float64Var(&c.weight, "w", 0, "Fixed sample weight. 0 uses the dump's traded volume.")
	f.BoolVar(&c.fetch, "fetch", false, "Fetch hourly candles from the Poloniex chart API.")
	f.StringVar(&c.outFile, "o", "", "Output file. Stdout when empty.")
}

func (c *ratesBuildCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "-from and -to are required")
		return subcommands.ExitUsageError
	}
	method, err := rates.ParseMethod(c.method)
	if err != nil {
		return fail(err)
	}
	start, end, err := parseRange(c.start, c.end)
	if err != nil {
		return fail(err)
	}

	b := rates.NewBuilder(c.from, c.to, method)

	if c.fetch {
		if err := rates.FetchPoloniexChart(http.DefaultClient, b, start, end); err != nil {
			return fail(err)
		}
	}
	for _, file := range f.Args() {
		format, err := rates.DumpFormatFromExt(file)
		if err != nil {
			return fail(err)
		}
		in, err := os.Open(file)
		if err != nil {
			return fail(err)
		}
		err = rates.ReadDump(in, file, format, b, start, end, c.weight)
		in.Close()
		if err != nil {
			return fail(err)
		}
	}

	tab, err := b.Build()
	if err != nil {
		return fail(err)
	}
	return writeTable(tab, c.outFile)
}

func writeTable(tab *rates.Table, outFile string) subcommands.ExitStatus {
	w := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		w = f
	}
	if err := tab.Encode(w); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// ratesCombineCmd chains conversion tables into one.
type ratesCombineCmd struct {
	outFile string
}

func (*ratesCombineCmd) Name() string     { return "rates-combine" }
func (*ratesCombineCmd) Synopsis() string { return "chain conversion tables into one" }
func (*ratesCombineCmd) Usage() string {
	return `abl rates-combine [-o <file>] <table files>

  Chains tables A->B, B->C, ... into a single A->Z table, keeping only the
  hours present in every link.
`
}

func (c *ratesCombineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outFile, "o", "", "Output file. Stdout when empty.")
}

func (c *ratesCombineCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "need at least two table files")
		return subcommands.ExitUsageError
	}
	var tables []*rates.Table
	for _, file := range f.Args() {
		in, err := os.Open(file)
		if err != nil {
			return fail(err)
		}
		tab, err := rates.DecodeTable(in, file)
		in.Close()
		if err != nil {
			return fail(err)
		}
		tables = append(tables, tab)
	}
	out, err := rates.Combine(tables...)
	if err != nil {
		return fail(err)
	}
	return writeTable(out, c.outFile)
}
