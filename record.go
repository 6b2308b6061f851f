package abledger

import "fmt"

// Record is the canonical parsed transaction: a two-legged exchange between
// two currency accounts, at minute precision. The legs always move in
// opposite directions; parsers guarantee Amount1 * Amount2 <= 0, and Validate
// enforces it again before posting.
type Record struct {
	Date      Datetime
	Currency1 string
	Amount1   Quantity
	Currency2 string
	Amount2   Quantity
	Account1  string
	Account2  string

	// IsTransfer flags a movement between two accounts of the same
	// currency, subject to cross-file deduplication.
	IsTransfer bool
}

// FlagAsTransfer marks the record as an inter-account transfer.
func (r *Record) FlagAsTransfer() { r.IsTransfer = true }

// Validate rejects records whose legs move in the same direction.
func (r Record) Validate() error {
	if r.Amount1.value.Mul(r.Amount2.value).IsPositive() {
		return fmt.Errorf("%w on %s: %s %s <> %s %s",
			ErrInvalidExchange, r.Date, r.Currency1, r.Amount1, r.Currency2, r.Amount2)
	}
	return nil
}

// IsNegligible reports whether both legs are below the amount threshold.
// Such records are dropped before posting.
func (r Record) IsNegligible() bool {
	return r.Amount1.value.Abs().LessThan(amountThreshold) &&
		r.Amount2.value.Abs().LessThan(amountThreshold)
}
