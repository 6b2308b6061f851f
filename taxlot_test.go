package abledger

import (
	"errors"
	"testing"
)

func TestNewLot_ValueSignFollowsQuantity(t *testing.T) {
	d := MustParseDatetime("2020-01-10-12-00")

	l := NewLot("a", d, Q(-2), M(3000, "GBP"))
	if !l.Value.Equal(M(-3000, "GBP")) {
		t.Errorf("disposal value = %s, want %s", l.Value, M(-3000, "GBP"))
	}
	if !l.Rate().Equal(M(1500, "GBP")) {
		t.Errorf("rate = %s, want %s", l.Rate(), M(1500, "GBP"))
	}

	l = NewLot("b", d, Q(2), M(-3000, "GBP"))
	if !l.Value.Equal(M(3000, "GBP")) {
		t.Errorf("acquisition value = %s, want %s", l.Value, M(3000, "GBP"))
	}
}

func TestLot_Consume(t *testing.T) {
	d := MustParseDatetime("2020-01-10-12-00")

	t.Run("partial consumption moves value at the lot rate", func(t *testing.T) {
		l := NewLot("a", d, Q(-2), M(-3000, "GBP"))
		dv, err := l.Consume(Q(1))
		if err != nil {
			t.Fatalf("Consume(1) failed: %v", err)
		}
		if !dv.Equal(M(1500, "GBP")) {
			t.Errorf("value adjustment = %s, want %s", dv, M(1500, "GBP"))
		}
		q, v := l.Outstanding()
		if !q.Equal(Q(-1)) || !v.Equal(M(-1500, "GBP")) {
			t.Errorf("outstanding = (%s, %s), want (-1, -1500)", q, v)
		}
	})

	t.Run("same sign is rejected", func(t *testing.T) {
		l := NewLot("a", d, Q(-2), M(-3000, "GBP"))
		if _, err := l.Consume(Q(-1)); !errors.Is(err, ErrInvalidAdjustment) {
			t.Fatalf("Consume(-1) err = %v, want ErrInvalidAdjustment", err)
		}
	})

	t.Run("exceeding the outstanding quantity is rejected", func(t *testing.T) {
		l := NewLot("a", d, Q(-2), M(-3000, "GBP"))
		if _, err := l.Consume(Q(2.5)); !errors.Is(err, ErrInvalidAdjustment) {
			t.Fatalf("Consume(2.5) err = %v, want ErrInvalidAdjustment", err)
		}
	})

	t.Run("overshoot within epsilon lands exactly on zero", func(t *testing.T) {
		l := NewLot("a", d, Q(-2), M(-3000, "GBP"))
		if _, err := l.Consume(Q(2.0000005)); err != nil {
			t.Fatalf("Consume(2.0000005) failed: %v", err)
		}
		q, _ := l.Outstanding()
		if !q.IsZero() {
			t.Errorf("outstanding quantity = %s, want exactly 0", q)
		}
	})

	t.Run("negligible consumption is a no-op", func(t *testing.T) {
		l := NewLot("a", d, Q(-2), M(-3000, "GBP"))
		dv, err := l.Consume(Q(0.0000001))
		if err != nil {
			t.Fatalf("negligible Consume failed: %v", err)
		}
		if !dv.IsZero() {
			t.Errorf("value adjustment = %s, want 0", dv)
		}
		q, _ := l.Outstanding()
		if !q.Equal(Q(-2)) {
			t.Errorf("outstanding quantity = %s, want -2", q)
		}
	})
}

func TestLot_Drain(t *testing.T) {
	d := MustParseDatetime("2020-01-10-12-00")
	l := NewLot("a", d, Q(-2), M(-3000, "GBP"))
	if _, err := l.Consume(Q(1)); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	q, v := l.Drain()
	if !q.Equal(Q(-1)) || !v.Equal(M(-1500, "GBP")) {
		t.Errorf("Drain = (%s, %s), want (-1, -1500)", q, v)
	}
	q, v = l.Outstanding()
	if !q.IsZero() || !v.IsZero() {
		t.Errorf("after Drain outstanding = (%s, %s), want zero", q, v)
	}
}

func TestTransactionID(t *testing.T) {
	d := MustParseDatetime("2020-01-10-12-00")
	v := M(1500, "GBP")

	a := TransactionID("BTC", "GBP", v, d, "0")
	b := TransactionID("BTC", "GBP", v, d, "0")
	if a != b {
		t.Errorf("same inputs gave different ids: %s vs %s", a, b)
	}
	if c := TransactionID("BTC", "GBP", v, d, "1"); c == a {
		t.Errorf("different salts gave the same id: %s", c)
	}
	if c := TransactionID("ETH", "GBP", v, d, "0"); c == a {
		t.Errorf("different accounts gave the same id: %s", c)
	}
}
