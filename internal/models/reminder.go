package models

import "time"

type Reminder struct {
	ReminderID     int        `json:"reminders_id"`
	UserEmail      string     `json:"user_email"`
	IsStream       bool       `json:"is_stream"`
	Recipient      string     `json:"recipient"` // email for private delivery, stream name otherwise
	StreamID       *int       `json:"stream_id"` // resolved stream id when delivery goes to a stream
	Topic          string     `json:"topic"`
	Content        string     `json:"content"`
	Phrase         string     `json:"phrase"`          // canonical rendering of the schedule, shown in lists
	CronSpec       string     `json:"cron_spec"`       // five-field cron expression for calendar schedules
	RecurrenceRule string     `json:"recurrence_rule"` // RFC 5545 RRULE for interval schedules
	Dtstart        *time.Time `json:"dtstart"`         // first occurrence (for RRULE calculation)
	RemindAt       *time.Time `json:"remind_at"`       // next scheduled delivery time
	StopDate       *time.Time `json:"stop_date"`       // no deliveries after this instant
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsRecurring returns true if this reminder repeats
func (r *Reminder) IsRecurring() bool {
	return r.CronSpec != "" || r.RecurrenceRule != ""
}

type UserTimezone struct {
	UserEmail string    `json:"user_email"`
	Zone      string    `json:"zone"` // IANA zone name
	UpdatedAt time.Time `json:"updated_at"`
}
