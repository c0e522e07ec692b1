// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jrecord

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	msPerDay = 24 * 60 * 60 * 1000

	// Years outside this range have no four-digit text form.
	minYear = 0
	maxYear = 9999
)

// A Date is a calendar date with no time of day or time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in the form YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// IsValid reports whether d names a real calendar date with a year in the
// range 0 to 9999, the years that have a four-digit text form.
func (d Date) IsValid() bool {
	return d.Year >= minYear && d.Year <= maxYear &&
		d.Month >= time.January && d.Month <= time.December && d.Day >= 1 &&
		DateOf(d.Time()) == d
}

// Time returns the instant at midnight UTC on d.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

// String renders d in the form YYYY-MM-DD.
func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day) }

// A TimeOfDay is a time of day with millisecond precision, with no date or
// time zone. Its value is the number of milliseconds since midnight.
type TimeOfDay int32

// NewTimeOfDay constructs a time of day from its components.  It reports an
// error if any component is out of range.
func NewTimeOfDay(hour, minute, sec, msec int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec > 59 || msec < 0 || msec > 999 {
		return 0, fmt.Errorf("invalid time %02d:%02d:%02d.%03d", hour, minute, sec, msec)
	}
	return TimeOfDay(((hour*60+minute)*60+sec)*1000 + msec), nil
}

// TimeOfDayOf returns the time of day of t in its own location, truncated to
// milliseconds.
func TimeOfDayOf(t time.Time) TimeOfDay {
	tod, _ := NewTimeOfDay(t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/int(time.Millisecond))
	return tod
}

// ParseTime parses a time of day in the form HH:MM:SS, optionally followed
// by a fraction of a second. The fraction is truncated to milliseconds.
func ParseTime(s string) (TimeOfDay, error) {
	t, err := time.Parse(time.TimeOnly, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return TimeOfDayOf(t), nil
}

// IsValid reports whether t lies within a single day.
func (t TimeOfDay) IsValid() bool { return t >= 0 && t < msPerDay }

func (t TimeOfDay) Hour() int        { return int(t) / 3600000 }
func (t TimeOfDay) Minute() int      { return int(t) / 60000 % 60 }
func (t TimeOfDay) Second() int      { return int(t) / 1000 % 60 }
func (t TimeOfDay) Millisecond() int { return int(t) % 1000 }

// String renders t in the form HH:MM:SS.sss.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour(), t.Minute(), t.Second(), t.Millisecond())
}

// Timestamp normalizes t to a timestamp value: an instant in UTC with
// millisecond precision.
func Timestamp(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders the timestamp of t in RFC 3339 form, in UTC with
// exactly three fractional digits.
func FormatTimestamp(t time.Time) string { return Timestamp(t).Format(timestampLayout) }

// ParseTimestamp parses an RFC 3339 timestamp with any zone offset and
// returns its normalized timestamp value. The instant must fall in a year
// from 0 to 9999 UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return checkTimestamp(t)
}

// checkTimestamp normalizes t, and reports an error if its UTC year has no
// four-digit form.
func checkTimestamp(t time.Time) (time.Time, error) {
	ts := Timestamp(t)
	if y := ts.Year(); y < minYear || y > maxYear {
		return time.Time{}, fmt.Errorf("timestamp year %d out of range", y)
	}
	return ts, nil
}

// An Interval is a signed span of whole days plus a remainder of
// milliseconds. It is not a calendar duration: a day is always 86400000
// milliseconds. Both components of an interval carry the same sign.
type Interval struct{ ms int64 }

// NewInterval returns the interval of the given days plus millis. The result
// is normalized so that the magnitude of Millis is less than one day.
// NewInterval panics if the total number of milliseconds overflows int64.
func NewInterval(days, millis int64) Interval {
	v, ok := addInterval(days, millis)
	if !ok {
		panic(fmt.Sprintf("interval %dd%dms out of range", days, millis))
	}
	return v
}

// addInterval returns the interval of days plus millis, and reports false if
// the total does not fit in int64 milliseconds.
func addInterval(days, millis int64) (Interval, bool) {
	if days > math.MaxInt64/msPerDay || days < math.MinInt64/msPerDay {
		return Interval{}, false
	}
	d := days * msPerDay
	ms := d + millis
	if (millis > 0 && ms < d) || (millis < 0 && ms > d) {
		return Interval{}, false
	}
	return Interval{ms: ms}, true
}

// IntervalOf returns the interval of d, truncated to milliseconds.
func IntervalOf(d time.Duration) Interval { return Interval{ms: d.Milliseconds()} }

// Days returns the number of whole days in v.
func (v Interval) Days() int64 { return v.ms / msPerDay }

// Millis returns the milliseconds remaining in v after whole days.
func (v Interval) Millis() int64 { return v.ms % msPerDay }

// TotalMillis returns the length of v in milliseconds.
func (v Interval) TotalMillis() int64 { return v.ms }

// Duration returns v as a time.Duration. Intervals beyond about 292 years
// saturate.
func (v Interval) Duration() time.Duration {
	const maxMS = int64(1<<63-1) / int64(time.Millisecond)
	switch {
	case v.ms > maxMS:
		return time.Duration(1<<63 - 1)
	case v.ms < -maxMS:
		return time.Duration(-1 << 63)
	}
	return time.Duration(v.ms) * time.Millisecond
}

// String renders v in the canonical form "<days>d<millis>ms", for example
// "2d3600000ms" or "-1d-500ms".
func (v Interval) String() string {
	return strconv.FormatInt(v.Days(), 10) + "d" + strconv.FormatInt(v.Millis(), 10) + "ms"
}

var errBadInterval = errors.New("want <days>d<millis>ms")

// ParseInterval parses an interval in the canonical form produced by
// Interval.String. The components need not be normalized on input.
func ParseInterval(s string) (Interval, error) {
	ds, rest, ok := strings.Cut(s, "d")
	if !ok || !strings.HasSuffix(rest, "ms") {
		return Interval{}, fmt.Errorf("invalid interval %q: %w", s, errBadInterval)
	}
	days, err := strconv.ParseInt(ds, 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval days %q", ds)
	}
	ms, err := strconv.ParseInt(strings.TrimSuffix(rest, "ms"), 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval millis %q", rest)
	}
	v, ok := addInterval(days, ms)
	if !ok {
		return Interval{}, fmt.Errorf("interval %q out of range", s)
	}
	return v, nil
}
