package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatReminderList(t *testing.T) {
	out := FormatReminderList([]ReminderSummary{
		{ID: 1, Title: "update Jira", Active: true, ScheduleText: "on Jun 1 at 11:00"},
		{ID: 2, Title: "standup", Active: true, RecurrenceText: "every monday at 11:00"},
		{ID: 3, Title: "old one", Active: false, ScheduleText: "on May 1 at 09:00"},
	})

	assert.Contains(t, out, "Reminder id 1 is scheduled on Jun 1 at 11:00")
	assert.Contains(t, out, "Reminder id 2 is repeated every monday at 11:00")
	assert.Contains(t, out, "Reminder id 3 is scheduled on May 1 at 09:00")

	// Completed entries come before the separator, current ones after.
	sep := strings.Index(out, strings.Repeat("=", 50))
	assert.Greater(t, strings.Index(out, "Reminder id 1"), sep)
	assert.Less(t, strings.Index(out, "Reminder id 3"), sep)
}

func TestFormatReminderList_Empty(t *testing.T) {
	assert.Equal(t, "No reminders available.", FormatReminderList(nil))
}
