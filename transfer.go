package abledger

import "slices"

// TransferRegistry detects the same real-world transfer reported
// independently by two source files. Each transfer registers a canonical,
// direction-independent fingerprint under its UTC calendar day; a later
// registration with an identical fingerprint from a different file, dated
// within a day either side, is the duplicate half and gets suppressed.
type TransferRegistry struct {
	entries   map[string]*transferEntry
	order     []string              // registration order, for the report
	unmatched map[Datetime][]string // day bucket -> candidate ids
	matched   map[string]string     // id -> counterpart id, both directions
}

type transferEntry struct {
	id          string
	date        Datetime
	fingerprint string
	source      string
}

// TransferStatus is one row of the reconciliation report.
type TransferStatus struct {
	ID          string
	Date        Datetime
	Fingerprint string
	Source      string
	MatchedWith string // empty when unmatched
}

// NewTransferRegistry returns an empty registry.
func NewTransferRegistry() *TransferRegistry {
	return &TransferRegistry{
		entries:   make(map[string]*transferEntry),
		unmatched: make(map[Datetime][]string),
		matched:   make(map[string]string),
	}
}

// Fingerprint builds the canonical fingerprint of a transfer: the amount
// rounded to 5 decimal places, absolute, and the two account names ordered
// by the amount's sign, so both directions of reporting produce the same
// string. amount is the first leg's: negative means funds leave account1.
func Fingerprint(amount Quantity, account1, account2 string) string {
	from, to := account2, account1
	if amount.IsNegative() {
		from, to = account1, account2
	}
	return amount.Abs().StringFixed(5) + " " + from + " -> " + to
}

// Register records a transfer and reports whether it is the duplicate side
// of one already registered from a different source file. Duplicates are
// matched to their counterpart and must not be posted to any ledger.
func (t *TransferRegistry) Register(id string, date Datetime, fingerprint, source string) (duplicate bool) {
	t.entries[id] = &transferEntry{id: id, date: date, fingerprint: fingerprint, source: source}
	t.order = append(t.order, id)

	day := date.DayStart()
	// scan the transfer's own day and the adjacent ones, to tolerate clock
	// and timezone skew between exchanges.
	for _, bucket := range []Datetime{day.AddDays(-1), day, day.AddDays(1)} {
		for i, candidate := range t.unmatched[bucket] {
			prior := t.entries[candidate]
			if prior.fingerprint != fingerprint || prior.source == source {
				continue
			}
			t.matched[id] = candidate
			t.matched[candidate] = id
			t.unmatched[bucket] = slices.Delete(t.unmatched[bucket], i, i+1)
			return true
		}
	}
	t.unmatched[day] = append(t.unmatched[day], id)
	return false
}

// Matched returns the counterpart id of a matched transfer.
func (t *TransferRegistry) Matched(id string) (string, bool) {
	other, ok := t.matched[id]
	return other, ok
}

// Report lists every registered transfer, in registration order, with its
// matched/unmatched status.
func (t *TransferRegistry) Report() []TransferStatus {
	report := make([]TransferStatus, 0, len(t.order))
	for _, id := range t.order {
		e := t.entries[id]
		report = append(report, TransferStatus{
			ID:          e.id,
			Date:        e.date,
			Fingerprint: e.fingerprint,
			Source:      e.source,
			MatchedWith: t.matched[id],
		})
	}
	return report
}
