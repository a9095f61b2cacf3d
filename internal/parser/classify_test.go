package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyText(t *testing.T, p *Parser, text string, offset float64, now time.Time) Trigger {
	t.Helper()
	intent, err := p.Parse(privateCmd(text, now), offset, now)
	require.NoError(t, err)
	return intent.Trigger
}

func TestClassify_MultipleWeekdays(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{})

	trig := classifyText(t, p, "me to standup every Monday, Tuesday and Friday at 11:00", 0, now)
	cal, ok := trig.(CalendarRecurring)
	require.True(t, ok, "expected a calendar trigger, got %T", trig)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Friday}, cal.DaysOfWeek)
	assert.Equal(t, 11, cal.Hour)
	assert.Equal(t, 0, cal.Minute)
}

func TestClassify_WeekdayExpansion(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{})

	trig := classifyText(t, p, "me to update your issues every weekday at 10:00", 0, now)
	cal, ok := trig.(CalendarRecurring)
	require.True(t, ok)
	assert.Equal(t, []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	}, cal.DaysOfWeek)
	assert.Equal(t, 10, cal.Hour)
}

func TestClassify_LastDayOfMonth(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{})

	trig := classifyText(t, p, "me to close the books every last day of the month", 0, now)
	cal, ok := trig.(CalendarRecurring)
	require.True(t, ok)
	assert.Equal(t, "last", cal.DayOfMonth)
	assert.Equal(t, "*", cal.Month)
	assert.Equal(t, 9, cal.Hour)
	assert.Equal(t, 0, cal.Minute)

	trig = classifyText(t, p, "me to submit hours every first day of the month at 15:00", 0, now)
	cal = trig.(CalendarRecurring)
	assert.Equal(t, "1", cal.DayOfMonth)
	assert.Equal(t, 15, cal.Hour)
}

func TestClassify_IntervalFrequencyLexicon(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"at 9:00":  {{Text: "at 9:00", Time: at(2024, time.June, 1, 9, 0)}},
		"at 15:00": {{Text: "at 15:00", Time: at(2024, time.June, 1, 15, 0)}},
	}})

	cases := []struct {
		text   string
		period int
		unit   string
	}{
		{"me to log hours every day at 15:00", 1, "days"},
		{"me to check mail every 3 hours", 3, "hours"},
		{"me about estimation every 2nd week at 15:00", 2, "weeks"},
		{"me about planning every second month at 15:00", 2, "months"},
		{"me to stretch every third day at 15:00", 3, "days"},
	}
	for _, tc := range cases {
		trig := classifyText(t, p, tc.text, 0, now)
		iv, ok := trig.(IntervalRecurring)
		require.True(t, ok, "%q: expected an interval trigger, got %T", tc.text, trig)
		assert.Equal(t, tc.period, iv.Period, tc.text)
		assert.Equal(t, tc.unit, iv.Unit, tc.text)
		assert.True(t, strings.HasSuffix(iv.Unit, "s"), "unit must be pluralized")
	}
}

func TestClassify_IntervalStartEndBounds(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"at 15:00":  {{Text: "at 15:00", Time: at(2024, time.June, 1, 15, 0)}},
		"on Monday": {{Text: "Monday", Time: at(2024, time.June, 3, 0, 0)}},
		"on 2 June": {{Text: "2 June", Time: at(2024, time.June, 2, 0, 0)}},
	}})

	trig := classifyText(t, p, "me about estimation every 2nd week at 15:00 start on Monday end on 2 June", 0, now)
	iv, ok := trig.(IntervalRecurring)
	require.True(t, ok)
	assert.Equal(t, 2, iv.Period)
	assert.Equal(t, "weeks", iv.Unit)
	require.NotNil(t, iv.Start)
	assert.Equal(t, at(2024, time.June, 3, 15, 0), *iv.Start, "bound clock overridden to the firing time")
	require.NotNil(t, iv.End)
	assert.Equal(t, at(2024, time.June, 2, 15, 0), *iv.End)
}

func TestClassify_IntervalAutoAdvance(t *testing.T) {
	// Without a start bound, a first occurrence in the past advances by
	// exactly one period.
	now := at(2024, time.June, 1, 10, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"at 9:00": {{Text: "at 9:00", Time: at(2024, time.June, 1, 9, 0)}},
	}})

	trig := classifyText(t, p, "me to drink water every 3 hours", 0, now)
	iv := trig.(IntervalRecurring)
	require.NotNil(t, iv.Start)
	assert.Equal(t, at(2024, time.June, 1, 12, 0), *iv.Start)
}

func TestClassify_EveryPromotesDatePhrase(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"Monday at 15:00": {{Text: "Monday at 15:00", Time: at(2024, time.June, 3, 15, 0)}},
	}})

	trig := classifyText(t, p, "me to water plants every Monday at 15:00", 0, now)
	cal, ok := trig.(CalendarRecurring)
	require.True(t, ok, "single weekday after 'every' promotes to calendar, got %T", trig)
	assert.Equal(t, []time.Weekday{time.Monday}, cal.DaysOfWeek)
	assert.Equal(t, 15, cal.Hour)
}

func TestClassify_RepeatEveryMarker(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"Monday at 10:00": {{Text: "Monday at 10:00", Time: at(2024, time.June, 3, 10, 0)}},
	}})

	intent, err := p.Parse(privateCmd("me about some text repeat every Monday at 10:00", now), 0, now)
	require.NoError(t, err)
	assert.IsType(t, CalendarRecurring{}, intent.Trigger)
	assert.Equal(t, "some text", intent.BodyText, "'repeat' must not leak into the body")
}

func TestClassify_ExplicitClockRollsOverOneDay(t *testing.T) {
	// now is 10:00; "wednesday at 09:00" resolves to earlier today. With an
	// explicit at-clock the instant advances by one day, not one week.
	now := at(2024, time.January, 10, 10, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"wednesday at 09:00": {{Text: "wednesday at 09:00", Time: at(2024, time.January, 10, 9, 0)}},
	}})

	trig := classifyText(t, p, "me to sync every wednesday at 09:00", 0, now)
	cal := trig.(CalendarRecurring)
	assert.Equal(t, []time.Weekday{time.Thursday}, cal.DaysOfWeek, "advanced by exactly one day")
	assert.Equal(t, 9, cal.Hour)
}

func TestClassify_OneShotPastInstantNotAdvanced(t *testing.T) {
	// Date-phrase one-shots are user-authoritative: a past instant surfaces
	// as-is, the policy decision belongs to the caller.
	now := at(2024, time.June, 10, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"pay rent on June 1 at 10:00": {{Text: "on June 1 at 10:00", Time: at(2024, time.June, 1, 10, 0)}},
	}})

	intent, err := p.Parse(privateCmd("me pay rent on June 1 at 10:00", now), 0, now)
	require.NoError(t, err)
	trig := intent.Trigger.(OneShot)
	assert.Equal(t, at(2024, time.June, 1, 10, 0), trig.FireAt)
	assert.True(t, trig.FireAt.Before(now))
}

func TestClassify_CanonicalRenderingIdempotent(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{})

	trig := classifyText(t, p, "me to standup every monday, tuesday at 11:00", 0, now)
	cal := trig.(CalendarRecurring)

	again := classifyText(t, p, "me to standup "+cal.Phrase(), 0, now)
	assert.Equal(t, cal, again.(CalendarRecurring))
}

func TestClassify_LeftoverSpanIsExplicit(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"go home today at 19:00": {{Text: "today at 19:00", Time: at(2024, time.June, 1, 19, 0)}},
	}})

	intent, err := p.Parse(privateCmd("me go home today at 19:00", now), 0, now)
	require.NoError(t, err)
	assert.Equal(t, "go home", intent.BodyText)
	assert.Equal(t, []string{"today", "at", "19:00"}, intent.TemporalClause)
}
