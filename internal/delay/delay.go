// Package delay computes and formats how late a delegation task is.
package delay

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// Display strings with a fixed meaning.
const (
	OnTime        = "On Time"
	NotApplicable = "N/A"
	NoValue       = "-"
)

const (
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// Result is the timeliness of one task at a given instant.
type Result struct {
	Seconds int64
	Delayed bool
	// Applicable is false when no delay is reported at all (same-week
	// shift, can't-be-done, or unparseable timestamps).
	Applicable bool
	Display    string
}

// Compute derives the delay for task at now. Dates and times are interpreted in loc.
func Compute(task *types.DelegationTask, now time.Time, loc *time.Location) Result {
	if task.ShiftedCount == 1 {
		return Result{Display: NotApplicable}
	}
	if task.Status == types.TaskCantBeDone {
		return Result{Display: NotApplicable}
	}
	planned, err := task.PlannedAt(loc)
	if err != nil {
		return Result{Display: NotApplicable}
	}

	if task.Status.IsDone() {
		actual, ok, err := task.ActualAt(loc)
		if err != nil || !ok {
			return Result{Display: NotApplicable}
		}
		secs := int64(actual.Sub(planned) / time.Second)
		if secs <= 0 {
			return Result{Applicable: true, Display: OnTime}
		}
		return Result{Seconds: secs, Delayed: true, Applicable: true, Display: Format(secs)}
	}

	if now.After(planned) {
		secs := int64(now.Sub(planned) / time.Second)
		return Result{Seconds: secs, Delayed: true, Applicable: true, Display: Format(secs)}
	}
	return Result{Applicable: true, Display: NoValue}
}

// Format renders seconds as "<D> D <H> h <M> m". Zero components are
// omitted; a total under one minute renders as "0 m".
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / secondsPerDay
	seconds %= secondsPerDay
	hours := seconds / secondsPerHour
	seconds %= secondsPerHour
	minutes := seconds / secondsPerMinute

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, strconv.FormatInt(days, 10)+" D")
	}
	if hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+" h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+" m")
	}
	if len(parts) == 0 {
		return "0 m"
	}
	return strings.Join(parts, " ")
}

var componentRe = regexp.MustCompile(`(\d+)\s*([A-Za-z]+)`)

// Parse reads a stored delay string back into seconds. It accepts the
// current "1 D 2 h 3 m" form and the legacy "1 day 2 hrs 3 mins" form.
// "On Time" is zero; "N/A", "-" and empty strings report ok=false.
func Parse(s string) (seconds int64, ok bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", strings.ToLower(NotApplicable), NoValue:
		return 0, false
	case strings.ToLower(OnTime):
		return 0, true
	}

	matches := componentRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	for _, m := range matches {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		unit := unitSeconds(m[2])
		if unit == 0 {
			return 0, false
		}
		seconds += n * unit
	}
	return seconds, true
}

// SortKey is the value used when ordering by delay: unparseable and
// not-applicable delays sort as zero.
func SortKey(s string) int64 {
	secs, _ := Parse(s)
	return secs
}

// IsLegacy reports whether s is a parseable delay not written in the
// current format.
func IsLegacy(s string) bool {
	secs, ok := Parse(s)
	if !ok || strings.EqualFold(strings.TrimSpace(s), OnTime) {
		return false
	}
	return Format(secs) != strings.TrimSpace(s)
}

func unitSeconds(unit string) int64 {
	switch strings.ToLower(unit) {
	case "d", "day", "days":
		return secondsPerDay
	case "h", "hr", "hrs", "hour", "hours":
		return secondsPerHour
	case "m", "min", "mins", "minute", "minutes":
		return secondsPerMinute
	case "s", "sec", "secs", "second", "seconds":
		return 1
	}
	return 0
}
