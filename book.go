package abledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Book routes every canonical record to the one or two accounts it affects,
// owns the transfer registry, and aggregates whole-portfolio totals. Accounts
// are created lazily on first reference; the base-currency account is an
// ordinary named account fed through the same path as every other, it just
// also receives the synthetic offset lots of non-base-to-non-base trades.
type Book struct {
	cfg       *Config
	conv      *Converter
	valuer    *Valuer
	transfers *TransferRegistry
	accounts  map[string]*Account
	salts     map[string]int
	processed bool
}

// NewBook creates an empty book over a fully loaded converter.
func NewBook(cfg *Config, conv *Converter) *Book {
	return &Book{
		cfg:       cfg,
		conv:      conv,
		valuer:    NewValuer(cfg, conv),
		transfers: NewTransferRegistry(),
		accounts:  make(map[string]*Account),
		salts:     make(map[string]int),
	}
}

// Base returns the base currency of the book.
func (b *Book) Base() string { return b.cfg.BaseCurrency }

// Account returns the named account, or nil if it was never posted to.
func (b *Book) Account(name string) *Account { return b.accounts[name] }

// AccountNames returns all account names, sorted.
func (b *Book) AccountNames() []string {
	names := make([]string, 0, len(b.accounts))
	for name := range b.accounts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (b *Book) account(name, currency string) *Account {
	acc, ok := b.accounts[name]
	if !ok {
		acc = newAccount(name, currency, b.cfg.BaseCurrency)
		acc.debitPaydownChargeable = b.cfg.DebitPaydownChargeable
		b.accounts[name] = acc
	}
	return acc
}

// SourcePrefix derives the candidate account prefix from an input file name:
// the base name up to its first dot. "ledgers/poloniex.2017.csv" gives
// "poloniex".
func SourcePrefix(filename string) string {
	name := path.Base(filepathToSlash(filename))
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}

func filepathToSlash(p string) string { return strings.ReplaceAll(p, "\\", "/") }

// nextSalt disambiguates economically identical transactions so their ids
// never collide.
func (b *Book) nextSalt(account1, account2 string, value Money, date Datetime) string {
	key := account1 + "|" + account2 + "|" + value.StringFixed(8) + "|" + date.String()
	n := b.salts[key]
	b.salts[key] = n + 1
	return strconv.Itoa(n)
}

// Post values a record and appends its lots to the affected accounts.
// source is the input file the record came from; it names the transfer
// registration source and, via SourcePrefix, the account prefix applied to
// non-base, non-transfer legs.
func (b *Book) Post(rec Record, source string) error {
	if b.processed {
		return fmt.Errorf("%w: cannot post after ProcessAll", ErrAlreadyProcessed)
	}
	if rec.IsNegligible() {
		return nil
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	value1, value2, err := b.valuer.Value(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	if value1.Decimal().Abs().LessThan(valueThreshold) &&
		value2.Decimal().Abs().LessThan(valueThreshold) {
		return nil
	}

	account1, account2 := rec.Account1, rec.Account2
	prefix := b.cfg.PrefixFor(SourcePrefix(source))
	if !rec.IsTransfer {
		if rec.Currency1 != b.cfg.BaseCurrency {
			account1 = prefix + account1
		}
		if rec.Currency2 != b.cfg.BaseCurrency {
			account2 = prefix + account2
		}
	}

	id := TransactionID(account1, account2, value1, rec.Date,
		b.nextSalt(account1, account2, value1, rec.Date))

	if rec.IsTransfer {
		fp := Fingerprint(rec.Amount1, account1, account2)
		if b.transfers.Register(id, rec.Date, fp, source) {
			// the duplicate half of a transfer already posted from the
			// other source file.
			return nil
		}
	}

	if err := b.account(account1, rec.Currency1).AddLot(NewLot(id+"/1", rec.Date, rec.Amount1, value1)); err != nil {
		return err
	}
	if err := b.account(account2, rec.Currency2).AddLot(NewLot(id+"/2", rec.Date, rec.Amount2, value2)); err != nil {
		return err
	}

	// a trade between two non-base currencies implicitly moves base value
	// in and out of the portfolio: balance it with offset lots on the base
	// account.
	if rec.Currency1 != b.cfg.BaseCurrency && rec.Currency2 != b.cfg.BaseCurrency {
		base := b.account(b.cfg.BaseCurrency, b.cfg.BaseCurrency)
		o1, o2 := value1.Neg(), value2.Neg()
		if err := base.AddLot(NewLot(id+"/b1", rec.Date, o1.AsQuantity(), o1)); err != nil {
			return err
		}
		if err := base.AddLot(NewLot(id+"/b2", rec.Date, o2.AsQuantity(), o2)); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap loads pre-ledger account states, one CSV line per position:
// account, currency, amount, base currency, value. Positions are posted at
// the given start date, with base offsets like any other posting.
func (b *Book) Bootstrap(r io.Reader, source string, start Datetime) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	line := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", ErrMalformedRecord, source, line, err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) != 5 {
			return fmt.Errorf("%w: %s:%d: expecting 5 entries, got %d", ErrMalformedRecord, source, line, len(fields))
		}
		name := strings.TrimSpace(fields[0])
		currency := strings.TrimSpace(fields[1])
		amount, err := ParseQuantity(strings.TrimSpace(fields[2]))
		if err != nil {
			return fmt.Errorf("%w: %s:%d: bad amount: %v", ErrMalformedRecord, source, line, err)
		}
		if base := strings.TrimSpace(fields[3]); base != b.cfg.BaseCurrency {
			return fmt.Errorf("%w: %s:%d: base currency %q, want %q", ErrMalformedRecord, source, line, base, b.cfg.BaseCurrency)
		}
		value, err := ParseMoney(strings.TrimSpace(fields[4]), b.cfg.BaseCurrency)
		if err != nil {
			return fmt.Errorf("%w: %s:%d: bad value: %v", ErrMalformedRecord, source, line, err)
		}
		if name == "" {
			name = currency
		}

		id := TransactionID(name, name, value, start, b.nextSalt(name, name, value, start))
		if err := b.account(name, currency).AddLot(NewLot(id+"/1", start, amount, value)); err != nil {
			return err
		}
		if currency != b.cfg.BaseCurrency {
			base := b.account(b.cfg.BaseCurrency, b.cfg.BaseCurrency)
			o := value.Neg()
			if err := base.AddLot(NewLot(id+"/b1", start, o.AsQuantity(), o)); err != nil {
				return err
			}
		}
	}
}

// ProcessAll runs the matching and pooling algorithm on every account, once.
// After it returns, the book is read-only.
func (b *Book) ProcessAll() error {
	if b.processed {
		return ErrAlreadyProcessed
	}
	b.processed = true
	for _, name := range b.AccountNames() {
		if err := b.accounts[name].Process(); err != nil {
			return fmt.Errorf("processing account %q: %w", name, err)
		}
	}
	return nil
}

// Rows returns every account's per-lot report rows, accounts in name order.
func (b *Book) Rows() []ReportRow {
	var rows []ReportRow
	for _, name := range b.AccountNames() {
		rows = append(rows, b.accounts[name].Rows()...)
	}
	return rows
}

// TransferReport lists every registered transfer with its reconciliation
// status.
func (b *Book) TransferReport() []TransferStatus { return b.transfers.Report() }

// AccountSummary is one account's totals over the reporting range.
type AccountSummary struct {
	Account    string
	Currency   string
	Balance    Quantity
	Cost       Money
	Profit     Money
	Proceeds   Money
	Chargeable Money
	Disposals  int
}

// Summary aggregates per-account and whole-portfolio totals over a range.
type Summary struct {
	Base     string
	Start    Datetime
	End      Datetime
	Accounts []AccountSummary

	InitialCost     Money
	FinalCost       Money
	TotalProfit     Money
	TotalProceeds   Money
	TotalChargeable Money
	Disposals       int
}

// CheckError is the absolute difference between total cost at range end and
// range start. Every trade posts offsetting values, so it should be
// approximately zero.
func (s *Summary) CheckError() Money { return s.FinalCost.Sub(s.InitialCost).Abs() }

// CheckOK reports whether the cost-conservation check passes, within a 0.01
// tolerance in base currency. A sanity invariant, not a correctness proof.
func (s *Summary) CheckOK() bool {
	return s.CheckError().LessThan(M(0.01, s.Base))
}

// NewSummary computes the per-account and portfolio totals over
// [start, end]. It must be called after ProcessAll.
func (b *Book) NewSummary(start, end Datetime) (*Summary, error) {
	if !b.processed {
		return nil, fmt.Errorf("summary requested before ProcessAll")
	}
	base := b.cfg.BaseCurrency
	s := &Summary{
		Base:        base,
		Start:       start,
		End:         end,
		InitialCost: M(0, base),
		FinalCost:   M(0, base),
	}
	for _, name := range b.AccountNames() {
		acc := b.accounts[name]
		proceeds, n := acc.ProceedsBetween(start, end)
		row := AccountSummary{
			Account:    acc.name,
			Currency:   acc.currency,
			Balance:    acc.BalanceAt(end),
			Cost:       acc.CostAt(end),
			Profit:     acc.ProfitBetween(start, end),
			Proceeds:   proceeds,
			Chargeable: acc.ChargeableBetween(start, end),
			Disposals:  n,
		}
		s.Accounts = append(s.Accounts, row)
		s.InitialCost = s.InitialCost.Add(acc.CostAt(start))
		s.FinalCost = s.FinalCost.Add(row.Cost)
		s.TotalProfit = s.TotalProfit.Add(row.Profit)
		s.TotalProceeds = s.TotalProceeds.Add(row.Proceeds)
		s.TotalChargeable = s.TotalChargeable.Add(row.Chargeable)
		s.Disposals += n
	}
	return s, nil
}
