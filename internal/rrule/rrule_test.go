package rrule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logivations/zulip-reminder/internal/parser"
)

func ts(y int, mo time.Month, d, h, m int) time.Time {
	return time.Date(y, mo, d, h, m, 0, 0, time.Local)
}

func TestFromTrigger_Interval(t *testing.T) {
	now := ts(2024, time.June, 1, 8, 0)
	start := ts(2024, time.June, 3, 15, 0)
	end := ts(2024, time.June, 30, 15, 0)

	rule, dtstart, until, ok := FromTrigger(parser.IntervalRecurring{
		Unit: "weeks", Period: 2, Start: &start, End: &end,
	}, now)
	require.True(t, ok)
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=2;UNTIL="+end.UTC().Format("20060102T150405Z"), rule)
	assert.Equal(t, start, dtstart)
	require.NotNil(t, until)
	assert.Equal(t, end, *until)
}

func TestFromTrigger_IntervalDefaults(t *testing.T) {
	now := ts(2024, time.June, 1, 8, 0)

	rule, dtstart, until, ok := FromTrigger(parser.IntervalRecurring{Unit: "days", Period: 1}, now)
	require.True(t, ok)
	assert.Equal(t, "FREQ=DAILY", rule)
	assert.Equal(t, now, dtstart)
	assert.Nil(t, until)
}

func TestFromTrigger_LastDayOfMonth(t *testing.T) {
	now := ts(2024, time.June, 1, 8, 0)

	rule, _, _, ok := FromTrigger(parser.CalendarRecurring{
		DayOfMonth: "last", Month: "*", Hour: 9, Minute: 0,
	}, now)
	require.True(t, ok)
	assert.Equal(t, "FREQ=MONTHLY;BYHOUR=9;BYMINUTE=0;BYMONTHDAY=-1", rule)

	next, err := NextOccurrence(rule, now, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 30, next.Day())
	assert.Equal(t, time.June, next.Month())
}

func TestFromTrigger_WeekdayCalendarDeclined(t *testing.T) {
	// Weekday calendars live on cron schedules, not RRULEs.
	_, _, _, ok := FromTrigger(parser.CalendarRecurring{
		DaysOfWeek: []time.Weekday{time.Monday}, Hour: 11,
	}, ts(2024, time.June, 1, 8, 0))
	assert.False(t, ok)
}

func TestNextOccurrence(t *testing.T) {
	dtstart := ts(2024, time.June, 3, 15, 0)

	next, err := NextOccurrence("FREQ=WEEKLY;INTERVAL=2", dtstart, ts(2024, time.June, 4, 0, 0))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, ts(2024, time.June, 17, 15, 0), *next)

	// Past the UNTIL bound there is no next occurrence.
	next, err = NextOccurrence("FREQ=DAILY;UNTIL=20240605T000000Z", dtstart, ts(2024, time.July, 1, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestParseRRule_Invalid(t *testing.T) {
	_, err := ParseRRule("FREQ=SOMETIMES", time.Now())
	assert.Error(t, err)
}

func TestIsRecurring(t *testing.T) {
	assert.True(t, IsRecurring("FREQ=DAILY"))
	assert.True(t, IsRecurring("RRULE:FREQ=WEEKLY;INTERVAL=2"))
	assert.False(t, IsRecurring(""))
	assert.False(t, IsRecurring("garbage"))
}
