// Package timeparsing turns user-typed targets such as "+2d", "next monday
// 9am" or "2024-03-12 14:00" into a planned date and time.
//
// Layers are tried in order:
//  1. Compact duration (+6h, -1d, +2w)
//  2. Absolute timestamp (date-only, date and clock, RFC3339)
//  3. Natural language (tomorrow, next monday 3pm)
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// compactDurationRe matches compact duration patterns: [+-]?(\d+)([hdwmy])
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// ParseCompactDuration parses compact duration syntax relative to now.
//
//   - "+6h" -> now + 6 hours
//   - "-1d" -> now - 1 day
//   - "2w"  -> now + 2 weeks (no sign = positive)
//
// Units are h, d, w, m (months) and y.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}
	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}
	return applyDuration(now, amount, matches[3]), nil
}

func applyDuration(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "h":
		return base.Add(time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, amount)
	case "w":
		return base.AddDate(0, 0, amount*7)
	case "m":
		return base.AddDate(0, amount, 0)
	case "y":
		return base.AddDate(amount, 0, 0)
	}
	return base
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseNaturalLanguage parses English expressions like "tomorrow" or
// "next friday 3pm" relative to now. Parts of the time the text does not
// mention are taken from now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := parser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand %q as a date", s)
	}
	return r.Time, nil
}

// absoluteLayouts are tried in order; the bool marks layouts that carry a clock.
var absoluteLayouts = []struct {
	layout    string
	withClock bool
}{
	{"2006-01-02", false},
	{"2006-01-02 15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04", true},
}

// ParseRelativeTime runs every layer in turn and returns the first match.
// Absolute values are interpreted in now's location.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}
	for _, l := range absoluteLayouts {
		if t, err := time.ParseInLocation(l.layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(now.Location()), nil
	}
	return ParseNaturalLanguage(s, now)
}

// HasClock reports whether s names a time of day, so callers can keep an
// existing clock when only a date was given.
func HasClock(s string) bool {
	s = strings.TrimSpace(s)
	if IsCompactDuration(s) {
		return strings.HasSuffix(s, "h")
	}
	for _, l := range absoluteLayouts {
		if _, err := time.Parse(l.layout, s); err == nil {
			return l.withClock
		}
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	return clockWordRe.MatchString(strings.ToLower(s))
}

var clockWordRe = regexp.MustCompile(`\d\s*(am|pm)\b|\d{1,2}:\d{2}|\bnoon\b|\bmidnight\b`)

// Slot splits t into the planned date and clock strings tasks store.
func Slot(t time.Time) (date, clock string) {
	return t.Format("2006-01-02"), t.Format("15:04")
}
