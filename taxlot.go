package abledger

import (
	"fmt"

	"github.com/google/uuid"
)

// Lot is one transaction leg posted to one currency's account: a signed
// quantity of that currency and its signed base-currency value at the time
// of the trade. The origin fields (Quantity, Value, rate) are fixed at
// creation; the outstanding remainders are drained toward zero by matching
// and pooling.
type Lot struct {
	ID       string
	Date     Datetime
	Quantity Quantity // negative = disposal, positive = acquisition
	Value    Money    // base currency, sign matches Quantity

	// rate is the lot's own historical base-per-unit price, used for every
	// later partial consumption.
	rate Money

	outstandingQuantity Quantity
	outstandingValue    Money

	// chargeableWeight is 1 for lots that originated as disposals, 0
	// otherwise: deposits never generate chargeable gain directly.
	chargeableWeight Quantity

	realizedProfit         Money
	realizedChargeableGain Money
}

// NewLot creates a lot. The value's sign is forced to match the quantity's,
// whatever sign the caller handed in.
func NewLot(id string, date Datetime, quantity Quantity, value Money) *Lot {
	value = value.CopySign(quantity)
	l := &Lot{
		ID:                  id,
		Date:                date,
		Quantity:            quantity,
		Value:               value,
		outstandingQuantity: quantity,
		outstandingValue:    value,
	}
	if !quantity.IsNegligible() {
		l.rate = value.Div(quantity)
	} else {
		l.rate = M(0, value.Currency())
	}
	return l
}

// markDisposal flags the lot as disposal-originated, making its matched
// gains fully chargeable.
func (l *Lot) markDisposal() { l.chargeableWeight = Q(1) }

// Consume absorbs the quantity q into the lot's outstanding remainder.
// q must oppose the outstanding quantity's sign and must not exceed it in
// magnitude; either violation is an ErrInvalidAdjustment, which indicates a
// matching-algorithm bug and must abort the run. The returned Money is the
// value adjustment q multiplied by the lot's own rate, already added to the
// outstanding value.
//
// A call with |q| below epsilon is a no-op returning zero.
func (l *Lot) Consume(q Quantity) (Money, error) {
	if q.IsNegligible() {
		return M(0, l.Value.Currency()), nil
	}
	if q.SameSign(l.outstandingQuantity) && !l.outstandingQuantity.IsZero() {
		return Money{}, fmt.Errorf("%w: cannot add %s to a lot holding %s",
			ErrInvalidAdjustment, q, l.outstandingQuantity)
	}
	excess := q.Abs().Sub(l.outstandingQuantity.Abs())
	if excess.IsPositive() {
		if !excess.IsNegligible() {
			return Money{}, fmt.Errorf("%w: adjustment %s exceeds outstanding %s",
				ErrInvalidAdjustment, q, l.outstandingQuantity)
		}
		// within epsilon of a full consumption: land exactly on zero.
		q = l.outstandingQuantity.Neg()
	}
	dv := l.rate.Mul(q)
	l.outstandingQuantity = l.outstandingQuantity.Add(q)
	l.outstandingValue = l.outstandingValue.Add(dv)
	return dv, nil
}

// Drain returns the outstanding quantity and value, and resets both to
// zero. It is used when a lot is fully absorbed by a match or by pooling.
func (l *Lot) Drain() (Quantity, Money) {
	q, v := l.outstandingQuantity, l.outstandingValue
	l.outstandingQuantity = Q(0)
	l.outstandingValue = M(0, l.Value.Currency())
	return q, v
}

// RecordGain accumulates realized profit and chargeable gain on the lot.
func (l *Lot) RecordGain(profit, chargeable Money) {
	l.realizedProfit = l.realizedProfit.Add(profit)
	l.realizedChargeableGain = l.realizedChargeableGain.Add(chargeable)
}

// Outstanding returns the current remainders.
func (l *Lot) Outstanding() (Quantity, Money) {
	return l.outstandingQuantity, l.outstandingValue
}

// Profit returns the realized profit accumulated so far.
func (l *Lot) Profit() Money { return l.realizedProfit }

// ChargeableGain returns the realized chargeable gain accumulated so far.
func (l *Lot) ChargeableGain() Money { return l.realizedChargeableGain }

// Rate returns the lot's fixed base-per-unit rate.
func (l *Lot) Rate() Money { return l.rate }

// txNamespace salts every transaction id, so ids cannot collide with
// UUIDs minted by anything else.
var txNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("abledger.tx"))

// TransactionID derives a stable, collision-resistant identifier for a
// transaction from its account pair, base value, date and a disambiguating
// salt. Two economically distinct transactions always get distinct salts, so
// they always get distinct ids; the same transaction always hashes to the
// same id.
func TransactionID(account1, account2 string, value Money, date Datetime, salt string) string {
	key := account1 + "|" + account2 + "|" + value.StringFixed(8) + "|" + date.String() + "|" + salt
	return uuid.NewSHA1(txNamespace, []byte(key)).String()
}
