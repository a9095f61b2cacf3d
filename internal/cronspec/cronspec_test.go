package cronspec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logivations/zulip-reminder/internal/parser"
)

func TestFromCalendar_WeekdayList(t *testing.T) {
	spec, ok := FromCalendar(parser.CalendarRecurring{
		DaysOfWeek: []time.Weekday{time.Monday, time.Tuesday, time.Friday},
		Hour:       11,
		Minute:     0,
	})
	require.True(t, ok)
	assert.Equal(t, "0 11 * * 1,2,5", spec)
	assert.NoError(t, Validate(spec))
}

func TestFromCalendar_DayOfMonth(t *testing.T) {
	spec, ok := FromCalendar(parser.CalendarRecurring{
		DayOfMonth: "1", Month: "*", Hour: 15, Minute: 30,
	})
	require.True(t, ok)
	assert.Equal(t, "30 15 1 * *", spec)
}

func TestFromCalendar_LastDayNotExpressible(t *testing.T) {
	_, ok := FromCalendar(parser.CalendarRecurring{
		DayOfMonth: "last", Month: "*", Hour: 9,
	})
	assert.False(t, ok)
}

func TestNext(t *testing.T) {
	// Saturday June 1 2024. Next Monday 11:00 is June 3.
	after := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.Local)

	next, err := Next("0 11 * * 1", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 3, 11, 0, 0, 0, time.Local), next)

	// Strictly after: asking from the firing instant moves a week forward.
	next, err = Next("0 11 * * 1", next)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 10, 11, 0, 0, 0, time.Local), next)
}

func TestNext_BadSpec(t *testing.T) {
	_, err := Next("not a cron line", time.Now())
	assert.Error(t, err)
}
