package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/logivations/zulip-reminder/internal/parser"
)

// ParseRRule parses an RFC 5545 RRULE string and returns the RRule object
func ParseRRule(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	// Handle RRULE: prefix if present
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}

	// Database stores TIMESTAMP without timezone, but pgx reads it as UTC.
	// The actual values are local time, so we need to reinterpret them.
	opt.Dtstart = time.Date(
		dtstart.Year(), dtstart.Month(), dtstart.Day(),
		dtstart.Hour(), dtstart.Minute(), dtstart.Second(), dtstart.Nanosecond(),
		time.Local,
	)
	return rrule.NewRRule(*opt)
}

// NextOccurrence returns the next occurrence after the given time
// Returns nil if there are no more occurrences
func NextOccurrence(ruleStr string, dtstart time.Time, after time.Time) (*time.Time, error) {
	rule, err := ParseRRule(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

// FromTrigger converts a recurring trigger into an RRULE string plus its
// DTSTART. ok is false for triggers that belong on a cron schedule instead;
// only interval triggers and month-edge calendars land here.
func FromTrigger(t parser.Trigger, now time.Time) (rule string, dtstart time.Time, until *time.Time, ok bool) {
	switch trig := t.(type) {
	case parser.IntervalRecurring:
		b := &Builder{Interval: trig.Period, Until: trig.End}
		switch trig.Unit {
		case "minutes":
			b.Freq = rrule.MINUTELY
		case "hours":
			b.Freq = rrule.HOURLY
		case "days":
			b.Freq = rrule.DAILY
		case "weeks":
			b.Freq = rrule.WEEKLY
		case "months":
			b.Freq = rrule.MONTHLY
		default:
			return "", time.Time{}, nil, false
		}
		start := now
		if trig.Start != nil {
			start = *trig.Start
		}
		return b.String(), start, trig.End, true

	case parser.CalendarRecurring:
		// Cron's day-of-month field cannot say "last". RRULE can.
		if trig.DayOfMonth != "last" {
			return "", time.Time{}, nil, false
		}
		b := &Builder{
			Freq:       rrule.MONTHLY,
			ByMonthDay: []int{-1},
			ByHour:     []int{trig.Hour},
			ByMinute:   []int{trig.Minute},
			Until:      trig.End,
		}
		start := now
		if trig.Start != nil {
			start = *trig.Start
		}
		return b.String(), start, trig.End, true
	}
	return "", time.Time{}, nil, false
}

// Builder assembles an RRULE string from components
type Builder struct {
	Freq       rrule.Frequency
	Interval   int
	ByHour     []int
	ByMinute   []int
	ByMonthDay []int
	Until      *time.Time
}

func (b *Builder) String() string {
	var parts []string

	freqMap := map[rrule.Frequency]string{
		rrule.MINUTELY: "MINUTELY",
		rrule.HOURLY:   "HOURLY",
		rrule.DAILY:    "DAILY",
		rrule.WEEKLY:   "WEEKLY",
		rrule.MONTHLY:  "MONTHLY",
		rrule.YEARLY:   "YEARLY",
	}
	parts = append(parts, fmt.Sprintf("FREQ=%s", freqMap[b.Freq]))

	if b.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", b.Interval))
	}

	if len(b.ByHour) > 0 {
		hours := make([]string, len(b.ByHour))
		for i, h := range b.ByHour {
			hours[i] = fmt.Sprintf("%d", h)
		}
		parts = append(parts, fmt.Sprintf("BYHOUR=%s", strings.Join(hours, ",")))
	}

	if len(b.ByMinute) > 0 {
		mins := make([]string, len(b.ByMinute))
		for i, m := range b.ByMinute {
			mins[i] = fmt.Sprintf("%d", m)
		}
		parts = append(parts, fmt.Sprintf("BYMINUTE=%s", strings.Join(mins, ",")))
	}

	if len(b.ByMonthDay) > 0 {
		days := make([]string, len(b.ByMonthDay))
		for i, d := range b.ByMonthDay {
			days[i] = fmt.Sprintf("%d", d)
		}
		parts = append(parts, fmt.Sprintf("BYMONTHDAY=%s", strings.Join(days, ",")))
	}

	if b.Until != nil {
		parts = append(parts, fmt.Sprintf("UNTIL=%s", b.Until.UTC().Format("20060102T150405Z")))
	}

	return strings.Join(parts, ";")
}

// IsRecurring checks if the RRULE string represents a recurring schedule
func IsRecurring(ruleStr string) bool {
	return ruleStr != "" && strings.Contains(strings.ToUpper(ruleStr), "FREQ=")
}
