// Package duration parses and formats human-friendly durations such as
// "10d2h", "1y" or "3 weeks". Days, weeks, months and years are accepted on
// top of the units time.ParseDuration understands.
package duration

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 2_630_016 * time.Second  // 30.44 days
	Year  = 31_557_600 * time.Second // 365.25 days
)

var units = map[string]time.Duration{
	"nsec": time.Nanosecond, "ns": time.Nanosecond,
	"usec": time.Microsecond, "us": time.Microsecond, "µs": time.Microsecond,
	"msec": time.Millisecond, "ms": time.Millisecond,
	"seconds": time.Second, "second": time.Second, "secs": time.Second, "sec": time.Second, "s": time.Second,
	"minutes": time.Minute, "minute": time.Minute, "mins": time.Minute, "min": time.Minute, "m": time.Minute,
	"hours": time.Hour, "hour": time.Hour, "hrs": time.Hour, "hr": time.Hour, "h": time.Hour,
	"days": Day, "day": Day, "d": Day,
	"weeks": Week, "week": Week, "w": Week,
	"months": Month, "month": Month, "M": Month,
	"years": Year, "year": Year, "y": Year,
}

// ParseError describes why a duration string was rejected.
type ParseError struct {
	Input  string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid duration %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}

// Parse reads a sequence of <number><unit> pairs, optionally separated by
// whitespace, and returns their sum. Unit names are case sensitive so that
// "m" (minutes) and "M" (months) stay distinct.
func Parse(s string) (time.Duration, error) {
	input := s
	pos := 0
	skipSpace := func() {
		for pos < len(input) && isSpace(input[pos]) {
			pos++
		}
	}

	skipSpace()
	if pos == len(input) {
		return 0, &ParseError{Input: input, Offset: 0, Reason: "empty duration"}
	}

	var total time.Duration
	for pos < len(input) {
		start := pos
		var n uint64
		for pos < len(input) && input[pos] >= '0' && input[pos] <= '9' {
			if n > (math.MaxUint64-9)/10 {
				return 0, &ParseError{Input: input, Offset: start, Reason: "number is too large"}
			}
			n = n*10 + uint64(input[pos]-'0')
			pos++
		}
		if pos == start {
			return 0, &ParseError{Input: input, Offset: start, Reason: "expected number"}
		}

		skipSpace()
		unitStart := pos
		for pos < len(input) && !isSpace(input[pos]) && (input[pos] < '0' || input[pos] > '9') {
			pos++
		}
		unitName := input[unitStart:pos]
		if unitName == "" {
			return 0, &ParseError{Input: input, Offset: unitStart, Reason: "time unit needed, for example 10d or 60s"}
		}
		unit, ok := units[unitName]
		if !ok {
			return 0, &ParseError{Input: input, Offset: unitStart, Reason: fmt.Sprintf("unknown time unit %q", unitName)}
		}

		if n > uint64(math.MaxInt64/int64(unit)) {
			return 0, &ParseError{Input: input, Offset: start, Reason: "duration is too large"}
		}
		part := time.Duration(n) * unit
		if total > math.MaxInt64-part {
			return 0, &ParseError{Input: input, Offset: start, Reason: "duration is too large"}
		}
		total += part

		skipSpace()
	}

	return total, nil
}

// Format renders d in the form Parse accepts, largest unit first, for
// example "10days 2h" or "1year 1month 3days". Sub-second parts are kept.
// Negative durations are formatted by their magnitude with a leading '-'.
func Format(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	sign := ""
	if d < 0 {
		sign = "-"
		if d == math.MinInt64 {
			d = math.MaxInt64
		} else {
			d = -d
		}
	}

	secs := int64(d / time.Second)
	nanos := int64(d % time.Second)

	years := secs / int64(Year/time.Second)
	rem := secs % int64(Year/time.Second)
	months := rem / int64(Month/time.Second)
	rem %= int64(Month / time.Second)
	days := rem / 86400
	daySecs := rem % 86400

	parts := make([]string, 0, 9)
	plural := func(n int64, name string) {
		switch {
		case n == 1:
			parts = append(parts, fmt.Sprintf("%d%s", n, name))
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d%ss", n, name))
		}
	}
	short := func(n int64, name string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, name))
		}
	}

	plural(years, "year")
	plural(months, "month")
	plural(days, "day")
	short(daySecs/3600, "h")
	short(daySecs%3600/60, "m")
	short(daySecs%60, "s")
	short(nanos/1_000_000, "ms")
	short(nanos/1000%1000, "us")
	short(nanos%1000, "ns")

	return sign + strings.Join(parts, " ")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
