package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher maps exact clause text to canned matches, keeping tests
// independent of the real extractor.
type fakeSearcher struct {
	matches map[string][]DateMatch
}

func (f fakeSearcher) Search(text string, _ time.Time) []DateMatch {
	return f.matches[text]
}

func at(y int, mo time.Month, d, h, min int) time.Time {
	return time.Date(y, mo, d, h, min, 0, 0, time.UTC)
}

func privateCmd(text string, ts time.Time) Command {
	return Command{
		Text:        text,
		SenderEmail: "user@example.com",
		SenderName:  "User",
		Timestamp:   ts,
		Context:     Context{Type: ContextPrivate},
	}
}

func TestParse_OneShotRelative(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"update Jira in 3 hours": {{Text: "in 3 hours", Time: now.Add(3 * time.Hour)}},
	}})

	intent, err := p.Parse(privateCmd("me to update Jira in 3 hours", now), 0, now)
	require.NoError(t, err)

	trig, ok := intent.Trigger.(OneShot)
	require.True(t, ok, "expected a one-shot trigger, got %T", intent.Trigger)
	assert.Equal(t, at(2024, time.June, 1, 11, 0), trig.FireAt)
	assert.Equal(t, RecipientSelf, intent.Recipient.Kind)
	assert.Equal(t, "to", intent.Prefix)
	assert.Equal(t, "update Jira", intent.BodyText)
}

func TestParse_WeeklyCalendarWithEndBound(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"Monday at 11:00": {{Text: "Monday at 11:00", Time: at(2024, time.June, 3, 11, 0)}},
		"on 2 June 2024":  {{Text: "2 June 2024", Time: at(2024, time.June, 2, 0, 0)}},
	}})

	cmd := Command{
		Text:        "#team about standup every Monday at 11:00 end on 2 June 2024",
		SenderEmail: "user@example.com",
		Timestamp:   now,
		Context:     Context{Type: ContextStream, StreamID: 7, Topic: "general"},
	}
	intent, err := p.Parse(cmd, 0, now)
	require.NoError(t, err)

	assert.Equal(t, RecipientStream, intent.Recipient.Kind)
	assert.Equal(t, "team", intent.Recipient.Name)
	assert.True(t, intent.IsStream)
	assert.Equal(t, "standup", intent.BodyText)

	trig, ok := intent.Trigger.(CalendarRecurring)
	require.True(t, ok, "expected a calendar trigger, got %T", intent.Trigger)
	assert.Equal(t, []time.Weekday{time.Monday}, trig.DaysOfWeek)
	assert.Equal(t, 11, trig.Hour)
	assert.Equal(t, 0, trig.Minute)
	require.NotNil(t, trig.End)
	assert.Equal(t, at(2024, time.June, 2, 11, 0), *trig.End)
}

func TestParse_BareWeekSpanBecomesInterval(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		// Extractor finds nothing in the full text; the default clock
		// resolves through the appended "at 9:00".
		"at 9:00": {{Text: "at 9:00", Time: at(2024, time.June, 1, 9, 0)}},
	}})

	intent, err := p.Parse(privateCmd("me some text in 1 week", now), 0, now)
	require.NoError(t, err)

	trig, ok := intent.Trigger.(IntervalRecurring)
	require.True(t, ok, "expected an interval trigger, got %T", intent.Trigger)
	assert.Equal(t, "weeks", trig.Unit)
	assert.Equal(t, 1, trig.Period)
	require.NotNil(t, trig.Start)
	assert.Equal(t, at(2024, time.June, 1, 9, 0), *trig.Start)
	assert.Equal(t, "some text", intent.BodyText)
}

func TestParse_RelativeSpanAsymmetry(t *testing.T) {
	// Hour spans resolve through the extractor into one-shots; week spans
	// route through the interval template. Preserved behavior, not a bug.
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"call mom in 3 hours": {{Text: "in 3 hours", Time: now.Add(3 * time.Hour)}},
		"call mom in 1 week":  {{Text: "in 1 week", Time: now.AddDate(0, 0, 7)}},
		"at 9:00":             {{Text: "at 9:00", Time: at(2024, time.June, 1, 9, 0)}},
	}})

	intent, err := p.Parse(privateCmd("me call mom in 3 hours", now), 0, now)
	require.NoError(t, err)
	assert.IsType(t, OneShot{}, intent.Trigger)

	intent, err = p.Parse(privateCmd("me call mom in 1 week", now), 0, now)
	require.NoError(t, err)
	assert.IsType(t, IntervalRecurring{}, intent.Trigger)
}

func TestParse_QuotedBodyProtectedFromClassifier(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"on September 10 at 12:00": {{Text: "on September 10 at 12:00", Time: at(2024, time.September, 10, 12, 0)}},
	}})

	intent, err := p.Parse(privateCmd(`me to "pay invoice 2024-03-01 draft" on September 10 at 12:00`, now), 0, now)
	require.NoError(t, err)

	assert.Equal(t, "pay invoice 2024-03-01 draft", intent.BodyText)
	trig, ok := intent.Trigger.(OneShot)
	require.True(t, ok)
	assert.Equal(t, at(2024, time.September, 10, 12, 0), trig.FireAt)
}

func TestParse_NoTemporalExpression(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{})

	_, err := p.Parse(privateCmd("me to do something eventually", now), 0, now)
	assert.ErrorIs(t, err, ErrNoTemporalExpression)
}

func TestParse_TimezoneOffsetApplied(t *testing.T) {
	now := at(2024, time.June, 1, 8, 0)
	p := New(fakeSearcher{matches: map[string][]DateMatch{
		"standup at 10:00": {{Text: "at 10:00", Time: at(2024, time.June, 1, 10, 0)}},
	}})

	// User is 2.5 hours ahead of the server.
	intent, err := p.Parse(privateCmd("me standup at 10:00", now), -2.5, now)
	require.NoError(t, err)

	trig := intent.Trigger.(OneShot)
	assert.Equal(t, at(2024, time.June, 1, 7, 30), trig.FireAt)
}
