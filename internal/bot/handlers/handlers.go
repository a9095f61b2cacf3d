package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/logivations/zulip-reminder/internal/parser"
	"github.com/logivations/zulip-reminder/internal/repository"
	"github.com/logivations/zulip-reminder/internal/zulip"
)

type Repositories struct {
	Reminder *repository.ReminderRepository
	Timezone *repository.TimezoneRepository
}

// Notifier wakes the scheduler after a write so new reminders fire without
// waiting for the next tick.
type Notifier interface {
	Notify()
}

type Handlers struct {
	client *zulip.Client
	repos  *Repositories
	parser *parser.Parser
	sched  Notifier
}

func New(client *zulip.Client, repos *Repositories, p *parser.Parser, sched Notifier) *Handlers {
	return &Handlers{
		client: client,
		repos:  repos,
		parser: p,
		sched:  sched,
	}
}

const usageText = `Hi! I am a reminder bot. Talk to me like this:

* ` + "`me to update the Jira ticket in 3 hours`" + `
* ` + "`me about the duty plan on 21 June at 14:00`" + `
* ` + "`@**Full Name** to submit the report every Friday at 16:00`" + `
* ` + "`#**stream name** about standup every Monday, Wednesday at 11:00`" + `
* ` + "`here about the retro every 2nd week at 15:00 start on Monday`" + `

Other commands:

* ` + "`timezone Europe/Berlin`" + ` sets your timezone (required once)
* ` + "`list`" + ` shows your reminders
* ` + "`remove 3`" + ` deletes reminder 3`

func (h *Handlers) HandleMessage(ctx context.Context, msg zulip.IncomingMessage) {
	text := strings.TrimSpace(msg.Content)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		h.reply(ctx, msg, usageText)
		return
	}

	switch strings.ToLower(fields[0]) {
	case "help", "halp", "?":
		h.reply(ctx, msg, usageText)
	case "list":
		h.handleList(ctx, msg)
	case "remove", "delete":
		h.handleRemove(ctx, msg, fields[1:])
	case "timezone":
		h.handleTimezone(ctx, msg, fields[1:])
	case "set":
		// "set timezone Europe/Berlin" is the long form.
		if len(fields) >= 2 && strings.EqualFold(fields[1], "timezone") {
			h.handleTimezone(ctx, msg, fields[2:])
			return
		}
		h.handleAdd(ctx, msg, text)
	default:
		h.handleAdd(ctx, msg, text)
	}
}

// reply answers in the conversation the command came from.
func (h *Handlers) reply(ctx context.Context, msg zulip.IncomingMessage, text string) {
	out := zulip.Message{Content: text}
	if msg.Type == "stream" {
		out.Type = "stream"
		out.To = strconv.Itoa(msg.StreamID)
		out.Topic = msg.Subject
	} else {
		out.Type = "private"
		out.To = msg.SenderEmail
	}

	if err := h.client.SendMessage(ctx, out); err != nil {
		log.Printf("Failed to send reply to %s: %v", msg.SenderEmail, err)
	}
}
