// Command abl computes capital gains and losses from trading ledgers.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/aeron/abledger/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion wires shell completion. It exits early inside a completion
// request and is a no-op otherwise.
func completion() {
	csv := predict.Files("*.csv")
	free := predict.Something
	c := &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":      predict.Files("*.yaml"),
			"conversions": csv,
			"accounts":    csv,
			"start":       free,
		},
		Sub: map[string]*complete.Command{
			"gains": {
				Flags: map[string]complete.Predictor{"s": free, "d": free, "o": predict.Dirs("*")},
				Args:  csv,
			},
			"summary": {
				Flags: map[string]complete.Predictor{"s": free, "d": free},
				Args:  csv,
			},
			"transfers": {
				Flags: map[string]complete.Predictor{"d": free, "o": csv},
				Args:  csv,
			},
			"rates-build": {
				Flags: map[string]complete.Predictor{
					"from": free, "to": free, "method": predict.Set{"mean", "median", "robust"},
					"s": free, "d": free, "w": free, "fetch": predict.Nothing, "o": csv,
				},
				Args: predict.Files("*"),
			},
			"rates-combine": {
				Flags: map[string]complete.Predictor{"o": csv},
				Args:  csv,
			},
			"import-kraken": {
				Flags: map[string]complete.Predictor{"o": csv},
				Args:  csv,
			},
			"import-poloniex": {
				Flags: map[string]complete.Predictor{"withdrawals": predict.Nothing, "o": csv},
				Args:  csv,
			},
			"topic":  {Args: predict.Set{"matching", "pooling", "transfers", "rates", "formats", "*"}},
			"assist": {Flags: map[string]complete.Predictor{"d": free}, Args: csv},
		},
	}
	c.Complete("abl")
}
