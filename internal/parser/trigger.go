package parser

import (
	"fmt"
	"strings"
	"time"
)

// Trigger is the normalized schedule descriptor handed to the scheduling
// boundary. Exactly one concrete variant is produced per parse.
type Trigger interface {
	isTrigger()
	// Phrase returns the human-readable schedule text. For recurring
	// triggers the rendering is canonical: feeding it back through the
	// classifier yields an equivalent descriptor.
	Phrase() string
}

// OneShot fires exactly once at an absolute, timezone-corrected instant.
type OneShot struct {
	FireAt time.Time
}

func (OneShot) isTrigger() {}

func (t OneShot) Phrase() string {
	return t.FireAt.Format("on Jan 2 at 15:04")
}

// CalendarRecurring fires on a calendar pattern: a weekday set, or a
// day-of-month ("1" or "last") across every month. Hour and minute are in
// server-local, already offset-corrected time.
type CalendarRecurring struct {
	DaysOfWeek []time.Weekday
	DayOfMonth string // "", "1" or "last"
	Month      string // "" or "*"
	Hour       int
	Minute     int
	Start      *time.Time
	End        *time.Time
}

func (CalendarRecurring) isTrigger() {}

func (t CalendarRecurring) Phrase() string {
	if t.DayOfMonth != "" {
		which := "first"
		if t.DayOfMonth == "last" {
			which = "last"
		}
		return fmt.Sprintf("every %s day of the month at %02d:%02d", which, t.Hour, t.Minute)
	}
	names := make([]string, len(t.DaysOfWeek))
	for i, d := range t.DaysOfWeek {
		names[i] = strings.ToLower(d.String())
	}
	return fmt.Sprintf("every %s at %02d:%02d", strings.Join(names, ", "), t.Hour, t.Minute)
}

// IntervalRecurring fires every Period Units, optionally bounded. Unit is
// always the plural form. The clock time of each firing is carried by Start.
type IntervalRecurring struct {
	Unit   string // minutes, hours, days, weeks, months
	Period int
	Start  *time.Time
	End    *time.Time
}

func (IntervalRecurring) isTrigger() {}

func (t IntervalRecurring) Phrase() string {
	if t.Period == 1 {
		return "every " + strings.TrimSuffix(t.Unit, "s")
	}
	return fmt.Sprintf("every %d %s", t.Period, t.Unit)
}

// IsRecurring reports whether the trigger fires more than once.
func IsRecurring(t Trigger) bool {
	_, ok := t.(OneShot)
	return !ok
}
