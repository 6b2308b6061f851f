package abledger

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// amountThreshold drops records whose legs are both effectively zero.
var amountThreshold = decimal.New(1, -8) // 1e-8

// valueThreshold drops records whose legs are both worth effectively
// nothing in base currency.
var valueThreshold = decimal.New(1, -3) // 0.001

// Config carries the tunables of a run. The zero value is not usable; start
// from DefaultConfig or LoadConfig.
type Config struct {
	// BaseCurrency is the single currency all values, gains and reports
	// are expressed in.
	BaseCurrency string `yaml:"base_currency"`

	// Priorities ranks currencies for valuation leg selection, higher
	// wins. The base currency always outranks everything, whatever this
	// table says.
	Priorities map[string]int `yaml:"priorities"`

	// RatedPriority is the rank of a currency absent from Priorities but
	// for which conversion-rate data exists.
	RatedPriority int `yaml:"rated_priority"`

	// UnknownPriority is the rank of a currency absent from Priorities
	// with no rate data. It should stay below RatedPriority.
	UnknownPriority int `yaml:"unknown_priority"`

	// DebitPaydownChargeable makes the profit realized when an acquisition
	// pays down a debt account fully chargeable. The intended treatment of
	// that branch is ambiguous in the tax rules this tool follows, so it
	// is a policy knob rather than hard-coded.
	DebitPaydownChargeable bool `yaml:"debit_paydown_chargeable"`

	// MismatchWarnRatio is the relative disagreement between the two
	// independently-converted legs of a same-currency trade above which a
	// warning is logged.
	MismatchWarnRatio float64 `yaml:"mismatch_warn_ratio"`

	// AccountPrefixes lists the exchange names recognized as account
	// prefixes when derived from an input file name.
	AccountPrefixes []string `yaml:"account_prefixes"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		BaseCurrency:      "GBP",
		Priorities:        map[string]int{"EUR": 30, "USD": 20, "BTC": 10},
		RatedPriority:     1,
		UnknownPriority:   0,
		MismatchWarnRatio: 0.005,
		AccountPrefixes: []string{
			"poloniex", "kraken", "bitstamp", "gatecoin", "localbitcoins",
			"bitfinex", "bittrex", "cryptsy", "btcsx", "currencyfair",
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults. An empty
// path returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	if cfg.BaseCurrency == "" {
		return nil, fmt.Errorf("config %q: base_currency must not be empty", path)
	}
	return cfg, nil
}

// PrefixFor returns name if it is a recognized exchange account prefix, and
// "" otherwise.
func (c *Config) PrefixFor(name string) string {
	for _, p := range c.AccountPrefixes {
		if p == name {
			return p
		}
	}
	return ""
}
