package parser

import (
	"fmt"
	"strings"
)

// ReminderSummary is the read-only projection of a stored reminder consumed
// by the list formatter.
type ReminderSummary struct {
	ID             int
	Title          string
	Active         bool
	ScheduleText   string // "on Jun 2 at 11:00"
	RecurrenceText string // "every monday, tuesday at 11:00", empty for one-shots
}

// FormatReminderList renders stored reminders grouped by completion state.
func FormatReminderList(reminders []ReminderSummary) string {
	if len(reminders) == 0 {
		return "No reminders available."
	}

	var current, completed strings.Builder
	current.WriteString("Current:")
	completed.WriteString("Completed:")

	for _, r := range reminders {
		target := &current
		if !r.Active {
			target = &completed
		}
		if r.RecurrenceText != "" {
			fmt.Fprintf(target, "\nReminder id %d is repeated %s\nAbout: %s\n", r.ID, r.RecurrenceText, r.Title)
		} else {
			fmt.Fprintf(target, "\nReminder id %d is scheduled %s\nAbout: %s\n", r.ID, r.ScheduleText, r.Title)
		}
	}

	return completed.String() + "\n" + strings.Repeat("=", 50) + "\n" + current.String()
}
