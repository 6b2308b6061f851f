package rates

import (
	"fmt"
	"slices"
	"sort"

	"github.com/aeron/abledger"
	"github.com/shopspring/decimal"
)

// Method selects how multiple samples within one hour collapse to a rate.
type Method string

const (
	// Mean is the volume-weighted mean of the hour's samples.
	Mean Method = "mean"
	// Median is the plain median of the hour's samples.
	Median Method = "median"
	// RobustMean is the weighted mean followed by a median-clamp pass that
	// caps hour-to-hour outliers, for thin markets with rogue prints.
	RobustMean Method = "robust-mean"
)

// ParseMethod returns the method named by s.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Mean, Median, RobustMean:
		return m, nil
	}
	return "", fmt.Errorf("unknown computation method %q", s)
}

// clamp parameters of the robust-mean pass: a value deviating from the
// median of its 5-hour window by more than 8% is pulled back to the fence.
const (
	clampWindow    = 5
	clampThreshold = 0.08
)

type sample struct {
	price  float64
	weight float64
}

// Builder aggregates trade samples into an hourly rate table. Samples
// arrive in any order; Build sorts, aggregates, gap-fills and filters.
type Builder struct {
	From, To string
	Method   Method

	buckets map[abledger.Datetime][]sample
}

// NewBuilder returns an empty builder for the pair.
func NewBuilder(from, to string, method Method) *Builder {
	return &Builder{
		From: from, To: to, Method: method,
		buckets: make(map[abledger.Datetime][]sample),
	}
}

// Add records one traded price. A non-positive weight counts as 1, for
// sources without volume data.
func (b *Builder) Add(date abledger.Datetime, price, weight float64) {
	if weight <= 0 {
		weight = 1
	}
	h := date.HourStart()
	b.buckets[h] = append(b.buckets[h], sample{price, weight})
}

// Len returns the number of non-empty hour buckets.
func (b *Builder) Len() int { return len(b.buckets) }

// Build collapses the samples into a gap-free hourly table: every hour from
// the first sample to the last carries a rate, missing hours repeating the
// previous one.
func (b *Builder) Build() (*Table, error) {
	if len(b.buckets) == 0 {
		return nil, fmt.Errorf("no samples for %s->%s", b.From, b.To)
	}

	hours := make([]abledger.Datetime, 0, len(b.buckets))
	for h := range b.buckets {
		hours = append(hours, h)
	}
	slices.SortFunc(hours, compareDates)

	var dates []abledger.Datetime
	var values []float64
	last := 0.0
	cursor := hours[0]
	for _, h := range hours {
		// repeat the last rate over silent hours.
		for cursor.Before(h) {
			dates = append(dates, cursor)
			values = append(values, last)
			cursor = cursor.AddHours(1)
		}
		v, err := b.collapse(b.buckets[h])
		if err != nil {
			return nil, fmt.Errorf("aggregating %s->%s at %s: %w", b.From, b.To, h, err)
		}
		dates = append(dates, h)
		values = append(values, v)
		last = v
		cursor = h.AddHours(1)
	}

	if b.Method == RobustMean {
		values = medianClamp(values)
	}

	t := NewTable(b.From, b.To)
	for i, d := range dates {
		t.Set(d, decimal.NewFromFloat(values[i]))
	}
	return t, nil
}

// collapse reduces one hour's samples to a single value.
func (b *Builder) collapse(ss []sample) (float64, error) {
	switch b.Method {
	case Mean, RobustMean:
		var psum, wsum float64
		for _, s := range ss {
			psum += s.price * s.weight
			wsum += s.weight
		}
		if wsum == 0 {
			return 0, fmt.Errorf("zero total weight")
		}
		return psum / wsum, nil
	case Median:
		ps := make([]float64, len(ss))
		for i, s := range ss {
			ps[i] = s.price
		}
		return median(ps), nil
	}
	return 0, fmt.Errorf("unknown computation method %q", b.Method)
}

func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}

// medianClamp pulls each value back toward the median of its surrounding
// window when it deviates by more than the threshold. The window shrinks at
// the series edges.
func medianClamp(values []float64) []float64 {
	out := make([]float64, len(values))
	half := clampWindow / 2
	for i, v := range values {
		lo := max(0, i-half)
		hi := min(len(values), i+half+1)
		window := append([]float64(nil), values[lo:hi]...)
		m := median(window)
		fence := clampThreshold * m
		switch {
		case v > m+fence:
			v = m + fence
		case v < m-fence:
			v = m - fence
		}
		out[i] = v
	}
	return out
}
