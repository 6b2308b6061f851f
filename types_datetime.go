package abledger

import (
	"fmt"
	"strings"
	"time"
)

// DatetimeFormat is the canonical textual form of a Datetime. It is the
// format the original ledger files use, minute precision, always UTC.
const DatetimeFormat = "2006-01-02-15-04"

// Datetime represents a UTC point in time with minute-level granularity.
// It is a comparable value type, so it can be used directly as a map key.
type Datetime struct {
	y  int
	m  time.Month
	d  int
	hh int
	mm int
}

// NewDatetime returns a normalized Datetime for the given components.
// Out-of-range values are carried over, like time.Date does.
func NewDatetime(year int, month time.Month, day, hour, minute int) Datetime {
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return Datetime{t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()}
}

// NewDatetimeFromTime converts a time.Time to a Datetime, truncating to the
// minute and converting to UTC.
func NewDatetimeFromTime(t time.Time) Datetime {
	t = t.UTC()
	return Datetime{t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()}
}

// time returns the canonical time.Time representation (UTC).
func (t Datetime) time() time.Time {
	return time.Date(t.y, t.m, t.d, t.hh, t.mm, 0, 0, time.UTC)
}

func (t Datetime) String() string { return t.time().Format(DatetimeFormat) }

// IsZero returns true if the datetime is the zero value.
func (t Datetime) IsZero() bool {
	return t.y == 0 && t.m == 0 && t.d == 0 && t.hh == 0 && t.mm == 0
}

// Before reports whether t is before x.
func (t Datetime) Before(x Datetime) bool { return t.time().Before(x.time()) }

// After reports whether t is after x.
func (t Datetime) After(x Datetime) bool { return t.time().After(x.time()) }

// AddDays returns a new Datetime with the given number of days added.
func (t Datetime) AddDays(n int) Datetime {
	return NewDatetime(t.y, t.m, t.d+n, t.hh, t.mm)
}

// AddHours returns a new Datetime with the given number of hours added.
func (t Datetime) AddHours(n int) Datetime {
	return NewDatetime(t.y, t.m, t.d, t.hh+n, t.mm)
}

// HourStart truncates the datetime to the start of its hour. Conversion rate
// tables are keyed on this value.
func (t Datetime) HourStart() Datetime { return Datetime{t.y, t.m, t.d, t.hh, 0} }

// DayStart truncates the datetime to midnight. Transfer reconciliation
// buckets candidates on this value.
func (t Datetime) DayStart() Datetime { return Datetime{t.y, t.m, t.d, 0, 0} }

// DaysBetween returns the number of calendar days from t to x. It is
// negative when x is before t. Only the date part matters: 23:59 one day to
// 00:01 the next counts as one day.
func (t Datetime) DaysBetween(x Datetime) int {
	a := time.Date(t.y, t.m, t.d, 0, 0, 0, 0, time.UTC)
	b := time.Date(x.y, x.m, x.d, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

// separators tolerated in input dates; they are all normalized to '-'.
var datetimeNormalizer = strings.NewReplacer("/", "-", " ", "-", ";", "-", ":", "-")

// ParseDatetime parses a Datetime from its canonical "2006-01-02-15-04"
// form. The separators '/', ' ', ';' and ':' are tolerated, and a date
// without a time part is read as midnight.
func ParseDatetime(s string) (Datetime, error) {
	s = datetimeNormalizer.Replace(strings.TrimSpace(s))
	if t, err := time.Parse(DatetimeFormat, s); err == nil {
		return NewDatetimeFromTime(t), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return NewDatetimeFromTime(t), nil
	}
	return Datetime{}, fmt.Errorf("invalid datetime %q, want format %q", s, DatetimeFormat)
}

// MustParseDatetime is like ParseDatetime but panics on error.
func MustParseDatetime(s string) Datetime {
	t, err := ParseDatetime(s)
	if err != nil {
		panic(err.Error())
	}
	return t
}
