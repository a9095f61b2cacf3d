package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/logivations/zulip-reminder/internal/cronspec"
	"github.com/logivations/zulip-reminder/internal/models"
	"github.com/logivations/zulip-reminder/internal/parser"
	"github.com/logivations/zulip-reminder/internal/rrule"
	"github.com/logivations/zulip-reminder/internal/zulip"
)

func (h *Handlers) handleAdd(ctx context.Context, msg zulip.IncomingMessage, text string) {
	now := time.Now()

	tz, err := h.repos.Timezone.Get(ctx, msg.SenderEmail)
	if errors.Is(err, parser.ErrTimezoneNotSet) {
		h.reply(ctx, msg, "I need your timezone before I can schedule anything. Tell me with `timezone Europe/Berlin` (any IANA zone name works).")
		return
	}
	if err != nil {
		log.Printf("Failed to load timezone for %s: %v", msg.SenderEmail, err)
		h.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}

	offset, err := parser.OffsetForZone(tz.Zone, now)
	if err != nil {
		h.reply(ctx, msg, fmt.Sprintf("Your stored timezone %q is not a valid zone name. Set a new one with `timezone Europe/Berlin`.", tz.Zone))
		return
	}

	cmd := parser.Command{
		Text:        text,
		SenderEmail: msg.SenderEmail,
		SenderName:  msg.SenderFullName,
		Timestamp:   time.Unix(msg.Timestamp, 0),
		Context:     commandContext(msg),
	}

	intent, err := h.parser.Parse(cmd, offset, now)
	if errors.Is(err, parser.ErrNoTemporalExpression) {
		h.reply(ctx, msg, "I could not find a date or time in that. Try something like `me to update Jira in 3 hours`, or say `help`.")
		return
	}
	if err != nil {
		log.Printf("Failed to parse command from %s: %v", msg.SenderEmail, err)
		h.reply(ctx, msg, "I did not understand that. Say `help` for examples.")
		return
	}

	reminder := &models.Reminder{
		UserEmail: msg.SenderEmail,
		Content:   intent.BodyText,
		Phrase:    intent.Trigger.Phrase(),
		Active:    true,
	}

	who, ok := h.resolveRecipient(ctx, msg, intent, reminder)
	if !ok {
		return
	}

	if err := applyTrigger(reminder, intent.Trigger, now); err != nil {
		h.reply(ctx, msg, "That schedule has no upcoming occurrences, so there is nothing for me to do.")
		return
	}

	if err := h.repos.Reminder.Create(ctx, reminder); err != nil {
		log.Printf("Failed to create reminder for %s: %v", msg.SenderEmail, err)
		h.reply(ctx, msg, "Something went wrong saving the reminder, please try again.")
		return
	}
	h.sched.Notify()

	ack := fmt.Sprintf("I will remind %s %s \"%s\" %s. Reminder id %d.",
		who, intent.Prefix, reminder.Content, reminder.Phrase, reminder.ReminderID)
	if intent.Prefix == "" {
		ack = fmt.Sprintf("I will remind %s \"%s\" %s. Reminder id %d.",
			who, reminder.Content, reminder.Phrase, reminder.ReminderID)
	}
	h.reply(ctx, msg, ack)
}

// resolveRecipient translates the parsed recipient into concrete delivery
// coordinates, talking to the server where a name needs an id. Returns the
// phrase used to address the target in the acknowledgement.
func (h *Handlers) resolveRecipient(ctx context.Context, msg zulip.IncomingMessage, intent *parser.ParsedIntent, reminder *models.Reminder) (string, bool) {
	switch intent.Recipient.Kind {
	case parser.RecipientSelf:
		reminder.Recipient = msg.SenderEmail
		return "you", true

	case parser.RecipientUser:
		user, err := h.client.GetUserByName(ctx, intent.Recipient.Name)
		if errors.Is(err, zulip.ErrNotFound) {
			h.reply(ctx, msg, fmt.Sprintf("I could not find anyone called %q.", intent.Recipient.Name))
			return "", false
		}
		if err != nil {
			log.Printf("Failed to resolve user %q: %v", intent.Recipient.Name, err)
			h.reply(ctx, msg, "Something went wrong, please try again.")
			return "", false
		}
		reminder.Recipient = user.Email
		return user.FullName, true

	case parser.RecipientAmbientStream:
		streamID := intent.Recipient.StreamID
		reminder.IsStream = true
		reminder.StreamID = &streamID
		reminder.Topic = msg.Subject
		return "this stream", true

	default: // RecipientStream
		id, err := h.client.GetStreamID(ctx, intent.Recipient.Name)
		if errors.Is(err, zulip.ErrNotFound) {
			h.reply(ctx, msg, fmt.Sprintf("There is no stream called %q.", intent.Recipient.Name))
			return "", false
		}
		if err != nil {
			log.Printf("Failed to resolve stream %q: %v", intent.Recipient.Name, err)
			h.reply(ctx, msg, "Something went wrong, please try again.")
			return "", false
		}
		reminder.IsStream = true
		reminder.Recipient = intent.Recipient.Name
		reminder.StreamID = &id
		return "#" + intent.Recipient.Name, true
	}
}

var errNoOccurrences = errors.New("schedule has no upcoming occurrences")

// applyTrigger fills in the schedule columns for the trigger variant.
// Calendar triggers become cron expressions, except month-edge schedules,
// which cron cannot express and which become RRULEs along with all interval
// triggers.
func applyTrigger(reminder *models.Reminder, trigger parser.Trigger, now time.Time) error {
	switch t := trigger.(type) {
	case parser.OneShot:
		fireAt := t.FireAt
		reminder.RemindAt = &fireAt
		return nil

	case parser.CalendarRecurring:
		if spec, ok := cronspec.FromCalendar(t); ok {
			reminder.CronSpec = spec
			reminder.StopDate = t.End
			from := now
			if t.Start != nil && t.Start.After(now) {
				from = *t.Start
			}
			next, err := cronspec.Next(spec, from)
			if err != nil {
				return err
			}
			if t.End != nil && next.After(*t.End) {
				return errNoOccurrences
			}
			reminder.RemindAt = &next
			return nil
		}
		return applyRule(reminder, trigger, now)

	case parser.IntervalRecurring:
		return applyRule(reminder, trigger, now)
	}
	return fmt.Errorf("unsupported trigger %T", trigger)
}

func applyRule(reminder *models.Reminder, trigger parser.Trigger, now time.Time) error {
	rule, dtstart, until, ok := rrule.FromTrigger(trigger, now)
	if !ok {
		return fmt.Errorf("trigger %T has no rule form", trigger)
	}
	reminder.RecurrenceRule = rule
	reminder.Dtstart = &dtstart
	reminder.StopDate = until

	// The start itself is the first delivery when it is still ahead of us.
	if dtstart.After(now) {
		first := dtstart
		reminder.RemindAt = &first
		return nil
	}
	next, err := rrule.NextOccurrence(rule, dtstart, now)
	if err != nil {
		return err
	}
	if next == nil || (until != nil && next.After(*until)) {
		return errNoOccurrences
	}
	reminder.RemindAt = next
	return nil
}

func (h *Handlers) handleList(ctx context.Context, msg zulip.IncomingMessage) {
	reminders, err := h.repos.Reminder.GetByUser(ctx, msg.SenderEmail)
	if err != nil {
		log.Printf("Failed to list reminders for %s: %v", msg.SenderEmail, err)
		h.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}

	summaries := make([]parser.ReminderSummary, 0, len(reminders))
	for _, r := range reminders {
		s := parser.ReminderSummary{
			ID:     r.ReminderID,
			Title:  r.Content,
			Active: r.Active,
		}
		if r.IsRecurring() {
			s.RecurrenceText = r.Phrase
		} else {
			s.ScheduleText = r.Phrase
		}
		summaries = append(summaries, s)
	}

	h.reply(ctx, msg, parser.FormatReminderList(summaries))
}

func (h *Handlers) handleRemove(ctx context.Context, msg zulip.IncomingMessage, args []string) {
	if len(args) == 0 {
		h.reply(ctx, msg, "Which one? Say `remove 3` with an id from `list`.")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		h.reply(ctx, msg, fmt.Sprintf("%q is not a reminder id. Say `remove 3` with an id from `list`.", args[0]))
		return
	}

	deleted, err := h.repos.Reminder.Delete(ctx, id, msg.SenderEmail)
	if err != nil {
		log.Printf("Failed to delete reminder %d for %s: %v", id, msg.SenderEmail, err)
		h.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}
	if !deleted {
		h.reply(ctx, msg, fmt.Sprintf("You have no reminder with id %d.", id))
		return
	}
	h.reply(ctx, msg, fmt.Sprintf("Reminder %d removed.", id))
}

func commandContext(msg zulip.IncomingMessage) parser.Context {
	if msg.Type == "stream" {
		return parser.Context{Type: parser.ContextStream, StreamID: msg.StreamID, Topic: msg.Subject}
	}
	return parser.Context{Type: parser.ContextPrivate}
}
