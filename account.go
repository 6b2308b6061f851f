package abledger

import (
	"fmt"
	"log"
	"slices"
)

// matchWindowDays is the bed-and-breakfast window: a disposal can only be
// matched by an acquisition dated at most this many calendar days later.
const matchWindowDays = 30

// Account owns the full lot history of one currency: the lots grouped by
// exact date-time key, the queue of disposals awaiting a 30-day match, the
// Section-104 pool, and the realized totals.
//
// Lifecycle: lots are appended with AddLot, Process runs exactly once, then
// the account is read-only and answers the windowed queries.
type Account struct {
	name     string
	currency string
	base     string

	txs    map[Datetime][]*Lot
	ledger []*Lot // all lots in processing order
	queue  []*Lot // disposals awaiting a match, FIFO by insertion

	poolQuantity Quantity // in the account's currency
	poolCost     Money    // in base currency

	profit         Money
	chargeableGain Money

	earliest Datetime
	latest   Datetime

	warned    bool // one-shot unowned-asset warning
	processed bool

	// debitPaydownChargeable makes the debit-side pool absorption fully
	// chargeable. See Config.DebitPaydownChargeable.
	debitPaydownChargeable bool

	rows []ReportRow
}

// ReportRow is one output line per lot, in ledger-process order. Balance and
// Cost are the running sums of posted quantity and value up to this row.
type ReportRow struct {
	Date       Datetime
	ID         string
	Account    string
	Base       string
	Value      Money
	Currency   string
	Quantity   Quantity
	Chargeable Money
	Profit     Money
	Balance    Quantity
	Cost       Money
}

func newAccount(name, currency, base string) *Account {
	return &Account{
		name:     name,
		currency: currency,
		base:     base,
		txs:            make(map[Datetime][]*Lot),
		poolCost:       M(0, base),
		profit:         M(0, base),
		chargeableGain: M(0, base),
	}
}

func (acc *Account) Name() string     { return acc.name }
func (acc *Account) Currency() string { return acc.currency }

// AddLot appends a lot to the account. Lots posted with the same exact
// date-time keep their insertion order within that key.
func (acc *Account) AddLot(l *Lot) error {
	if acc.processed {
		return fmt.Errorf("%w: cannot add lots to %q after processing", ErrAlreadyProcessed, acc.name)
	}
	acc.txs[l.Date] = append(acc.txs[l.Date], l)
	return nil
}

// poolRate returns the pool's average acquisition cost per unit. A zero
// pool has rate zero, and the rate is never negative.
func (acc *Account) poolRate() Money {
	if acc.poolQuantity.IsZero() {
		return M(0, acc.base)
	}
	r := acc.poolCost.Div(acc.poolQuantity)
	if r.IsNegative() {
		return M(0, acc.base)
	}
	return r
}

// PoolBalance returns the pool quantity after processing.
func (acc *Account) PoolBalance() Quantity { return acc.poolQuantity }

// PoolCost returns the pool cost after processing.
func (acc *Account) PoolCost() Money { return acc.poolCost }

// poolEntry tags the three mutually exclusive pool absorption cases, so the
// gain formula stays auditable.
type poolEntry int

const (
	// creditDisposal: disposing from an account in credit. The in-credit
	// portion is a chargeable disposal.
	creditDisposal poolEntry = iota
	// debitPaydown: acquiring into an account in debt. The acquisition
	// pays down the debt; realized profit, not chargeable by default.
	debitPaydown
	// neutralAbsorb: deposit into a non-negative pool, or disposal from a
	// non-positive one. No gain; the value just moves the pool cost.
	neutralAbsorb
)

func (acc *Account) classify(a Quantity) poolEntry {
	switch {
	case a.IsNegative() && acc.poolQuantity.IsPositive():
		return creditDisposal
	case a.IsPositive() && acc.poolQuantity.IsNegative():
		return debitPaydown
	default:
		return neutralAbsorb
	}
}

// absorb drains the lot into the Section-104 pool.
func (acc *Account) absorb(l *Lot) {
	a, v := l.Drain()
	if a.IsZero() && v.IsZero() {
		return
	}

	switch acc.classify(a) {
	case creditDisposal:
		// only the balance on the account counts as a chargeable disposal.
		c := acc.poolQuantity.Min(a.Neg())
		basis := acc.poolRate().Mul(c)
		proceeds := v.Mul(c).Div(a)
		g := proceeds.Sub(basis)
		l.RecordGain(g, g)
		acc.scalePoolCost(a)

	case debitPaydown:
		c := acc.poolQuantity.Neg().Min(a)
		basis := acc.poolRate().Mul(c)
		p := v.Mul(c).Div(a).Sub(basis)
		chargeable := p.Mul(l.chargeableWeight)
		if acc.debitPaydownChargeable {
			chargeable = p
		}
		l.RecordGain(p, chargeable)
		acc.scalePoolCost(a)

	case neutralAbsorb:
		acc.poolCost = acc.poolCost.Add(v)
	}

	acc.poolQuantity = acc.poolQuantity.Add(a)

	if !acc.warned && acc.currency != acc.base &&
		acc.poolQuantity.value.LessThan(epsilon.Neg()) && !a.IsNegligible() {
		acc.warned = true
		log.Printf("warning: disposal of unowned assets in %q: pool balance %s, adjustment %s, date %s",
			acc.name, acc.poolQuantity, a, l.Date)
	}
}

// scalePoolCost rescales the pool cost proportionally to the quantity that
// remains after absorbing a.
func (acc *Account) scalePoolCost(a Quantity) {
	factor := acc.poolQuantity.Add(a).Div(acc.poolQuantity)
	acc.poolCost = acc.poolCost.Mul(factor)
}

// expireQueue pools every queued disposal that has fallen out of the 30-day
// window relative to d, oldest first.
func (acc *Account) expireQueue(d Datetime) {
	for len(acc.queue) > 0 && acc.queue[0].Date.DaysBetween(d) > matchWindowDays {
		head := acc.queue[0]
		acc.queue = acc.queue[1:]
		acc.absorb(head)
	}
}

// matchAcquisition consumes the acquisition lot a against queued disposals,
// most recently queued first. Whatever the queue cannot take goes to the
// pool.
func (acc *Account) matchAcquisition(a *Lot) error {
	for len(acc.queue) > 0 {
		tail := acc.queue[len(acc.queue)-1]
		// stop as soon as a can no longer fully satisfy the tail disposal.
		sum := tail.outstandingQuantity.Add(a.outstandingQuantity)
		if sum.value.LessThan(epsilon.Neg()) {
			break
		}
		acc.queue = acc.queue[:len(acc.queue)-1]
		dq, dv := tail.Drain()
		adj, err := a.Consume(dq)
		if err != nil {
			return fmt.Errorf("matching %q against %q: %w", a.ID, tail.ID, err)
		}
		p := adj.Sub(dv)
		tail.RecordGain(p, p.Mul(tail.chargeableWeight))
	}

	if len(acc.queue) == 0 {
		// nothing left to match against: pool the remainder.
		acc.absorb(a)
		return nil
	}
	if a.outstandingQuantity.IsNegligible() {
		return nil
	}

	// a partially satisfies the tail disposal: drain a into it, the tail
	// stays queued with what remains outstanding.
	tail := acc.queue[len(acc.queue)-1]
	aq, av := a.Drain()
	adj, err := tail.Consume(aq)
	if err != nil {
		return fmt.Errorf("matching %q against %q: %w", a.ID, tail.ID, err)
	}
	p := adj.Sub(av)
	tail.RecordGain(p, p.Mul(tail.chargeableWeight))
	return nil
}

// Process runs the matching and pooling algorithm over all posted lots, in
// chronological order, disposals before acquisitions within a same date-time
// key. It must be called exactly once, after all lots have been posted.
func (acc *Account) Process() error {
	if acc.processed {
		return fmt.Errorf("%w: %q", ErrAlreadyProcessed, acc.name)
	}
	acc.processed = true
	if len(acc.txs) == 0 {
		return nil
	}

	dates := make([]Datetime, 0, len(acc.txs))
	for d := range acc.txs {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b Datetime) int {
		if a.Before(b) {
			return -1
		} else if a.After(b) {
			return 1
		}
		return 0
	})
	acc.earliest = dates[0]
	acc.latest = dates[len(dates)-1]

	for _, d := range dates {
		acc.expireQueue(d)

		// disposals first, then acquisitions, each group in insertion order.
		for _, l := range acc.txs[d] {
			if !l.Quantity.IsNegative() {
				continue
			}
			l.markDisposal()
			acc.ledger = append(acc.ledger, l)
			acc.queue = append(acc.queue, l)
		}
		for _, l := range acc.txs[d] {
			if l.Quantity.IsNegative() {
				continue
			}
			acc.ledger = append(acc.ledger, l)
			if err := acc.matchAcquisition(l); err != nil {
				return err
			}
		}
	}

	// whatever is still queued never found a match inside the window.
	for _, l := range acc.queue {
		acc.absorb(l)
	}
	acc.queue = nil

	var balance Quantity
	cost := M(0, acc.base)
	for _, l := range acc.ledger {
		acc.profit = acc.profit.Add(l.realizedProfit)
		acc.chargeableGain = acc.chargeableGain.Add(l.realizedChargeableGain)
		balance = balance.Add(l.Quantity)
		cost = cost.Add(l.Value)
		acc.rows = append(acc.rows, ReportRow{
			Date:       l.Date,
			ID:         l.ID,
			Account:    acc.name,
			Base:       acc.base,
			Value:      l.Value,
			Currency:   acc.currency,
			Quantity:   l.Quantity,
			Chargeable: l.realizedChargeableGain,
			Profit:     l.realizedProfit,
			Balance:    balance,
			Cost:       cost,
		})
	}
	return nil
}

// Rows returns one report row per lot, in process order. Only valid after
// Process.
func (acc *Account) Rows() []ReportRow { return acc.rows }

// Profit returns the account's total realized profit, in base currency.
func (acc *Account) Profit() Money { return acc.profit }

// ChargeableGain returns the account's total chargeable gain, in base
// currency.
func (acc *Account) ChargeableGain() Money { return acc.chargeableGain }

// EarliestDate and LatestDate bound the account's valid query range. They
// are established by Process.
func (acc *Account) EarliestDate() Datetime { return acc.earliest }
func (acc *Account) LatestDate() Datetime   { return acc.latest }

// BalanceAt sums posted quantities from the earliest date up to end,
// inclusive.
func (acc *Account) BalanceAt(end Datetime) Quantity {
	var total Quantity
	for _, l := range acc.ledger {
		if l.Date.After(end) {
			break
		}
		total = total.Add(l.Quantity)
	}
	return total
}

// CostAt sums posted values from the earliest date up to end, inclusive.
func (acc *Account) CostAt(end Datetime) Money {
	total := M(0, acc.base)
	for _, l := range acc.ledger {
		if l.Date.After(end) {
			break
		}
		total = total.Add(l.Value)
	}
	return total
}

// ProfitBetween sums realized profit over lots dated within [start, end].
func (acc *Account) ProfitBetween(start, end Datetime) Money {
	total := M(0, acc.base)
	for _, l := range acc.ledger {
		if l.Date.Before(start) {
			continue
		}
		if l.Date.After(end) {
			break
		}
		total = total.Add(l.realizedProfit)
	}
	return total
}

// ChargeableBetween sums chargeable gain over lots dated within [start, end].
func (acc *Account) ChargeableBetween(start, end Datetime) Money {
	total := M(0, acc.base)
	for _, l := range acc.ledger {
		if l.Date.Before(start) {
			continue
		}
		if l.Date.After(end) {
			break
		}
		total = total.Add(l.realizedChargeableGain)
	}
	return total
}

// ProceedsBetween sums disposal proceeds over [start, end] and counts the
// disposals. A lot counts as a disposal here when it carries a non-negligible
// chargeable gain.
func (acc *Account) ProceedsBetween(start, end Datetime) (Money, int) {
	total := M(0, acc.base)
	n := 0
	for _, l := range acc.ledger {
		if l.Date.Before(start) {
			continue
		}
		if l.Date.After(end) {
			break
		}
		if l.realizedChargeableGain.IsNegligible() {
			continue
		}
		total = total.Add(l.Value.Neg())
		n++
	}
	return total, n
}
