package parser

import (
	"math"
	"strings"
	"time"
)

// Interval triggers without an explicit clock fire at 09:00.
const (
	defaultHour   = 9
	defaultMinute = 0
)

// applyTimezoneOffset adds a signed fractional-hour offset (server zone minus
// user zone) to a naive extracted instant, yielding server-local firing time.
func applyTimezoneOffset(t time.Time, offset float64) time.Time {
	hours, frac := math.Modf(offset)
	minutes := math.Round(frac * 60)
	return t.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute)
}

// rolloverCalendar advances a calendar-path instant that is not at least an
// hour in the future: by one day when the phrase carried an explicit
// "at HH:MM", otherwise by one week. A result landing on the midnight hour is
// pushed to 09:00 (legacy normalization; midnight firings were never wanted).
// One-shot instants from plain date phrases never pass through here: those
// are user-authoritative and surface as-is even when already past.
func rolloverCalendar(t, now time.Time, explicitClock bool) time.Time {
	if t.Before(now.Add(time.Hour)) {
		if explicitClock {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.AddDate(0, 0, 7)
		}
	}
	if t.Hour() == 0 {
		t = t.Add(9 * time.Hour)
	}
	return t
}

// addPeriod advances t by n units, where unit is a plural lexicon unit.
func addPeriod(t time.Time, unit string, n int) time.Time {
	switch unit {
	case "minutes":
		return t.Add(time.Duration(n) * time.Minute)
	case "hours":
		return t.Add(time.Duration(n) * time.Hour)
	case "days":
		return t.AddDate(0, 0, n)
	case "weeks":
		return t.AddDate(0, 0, 7*n)
	case "months":
		return t.AddDate(0, n, 0)
	default:
		return t
	}
}

// withClock keeps the date of t and replaces its time of day.
func withClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// parseClock parses "HH:MM" (or "H:MM").
func parseClock(s string) (hour, minute int, ok bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// clockWithOffset applies the timezone offset to a bare clock time, wrapping
// across midnight.
func clockWithOffset(hour, minute int, offset float64) (int, int) {
	t := applyTimezoneOffset(time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC), offset)
	return t.Hour(), t.Minute()
}

// hasExplicitClock reports whether the clause carries a literal "at HH:MM".
func hasExplicitClock(tokens []string) bool {
	for i, tok := range tokens {
		if strings.EqualFold(tok, "at") && i+1 < len(tokens) {
			if _, _, ok := parseClock(normalizeToken(tokens[i+1])); ok {
				return true
			}
		}
	}
	return false
}
