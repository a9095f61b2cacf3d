// Package cronspec renders calendar triggers as standard five-field cron
// expressions and evaluates them.
package cronspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/logivations/zulip-reminder/internal/parser"
)

// FromCalendar converts a calendar trigger into a cron expression. ok is
// false when cron cannot express the schedule ("last day of the month" has
// no standard cron form and goes through an RRULE instead).
func FromCalendar(t parser.CalendarRecurring) (string, bool) {
	dom := "*"
	dow := "*"

	switch {
	case len(t.DaysOfWeek) > 0:
		days := make([]int, len(t.DaysOfWeek))
		for i, d := range t.DaysOfWeek {
			days[i] = int(d) // time.Weekday and cron agree: Sunday is 0
		}
		sort.Ints(days)
		parts := make([]string, len(days))
		for i, d := range days {
			parts[i] = strconv.Itoa(d)
		}
		dow = strings.Join(parts, ",")
	case t.DayOfMonth == "last":
		return "", false
	case t.DayOfMonth != "":
		dom = t.DayOfMonth
	}

	return fmt.Sprintf("%d %d %s * %s", t.Minute, t.Hour, dom, dow), true
}

// Next returns the first firing time strictly after the given instant.
func Next(spec string, after time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse cron spec %q: %w", spec, err)
	}
	return sched.Next(after), nil
}

// Validate reports whether the expression parses.
func Validate(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}
