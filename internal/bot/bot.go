package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/logivations/zulip-reminder/internal/bot/handlers"
	"github.com/logivations/zulip-reminder/internal/database"
	"github.com/logivations/zulip-reminder/internal/parser"
	"github.com/logivations/zulip-reminder/internal/repository"
	"github.com/logivations/zulip-reminder/internal/zulip"
)

type Bot struct {
	client   *zulip.Client
	handlers *handlers.Handlers
	email    string // the bot's own address, to skip its own traffic
}

func New(client *zulip.Client, db *database.DB, sched handlers.Notifier, botEmail string) *Bot {
	repos := &handlers.Repositories{
		Reminder: repository.NewReminderRepository(db),
		Timezone: repository.NewTimezoneRepository(db),
	}

	p := parser.New(parser.NewDateSearcher())

	return &Bot{
		client:   client,
		handlers: handlers.New(client, repos, p, sched),
		email:    botEmail,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	queue, err := b.client.RegisterQueue(ctx)
	if err != nil {
		return err
	}
	log.Println("Bot listening for messages")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		events, err := b.client.GetEvents(ctx, queue)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The server drops idle queues; register a fresh one and go on.
			log.Printf("Event poll failed, re-registering queue: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			if queue, err = b.client.RegisterQueue(ctx); err != nil {
				log.Printf("Failed to re-register event queue: %v", err)
			}
			continue
		}

		for _, ev := range events {
			if ev.Type != "message" || ev.Message == nil {
				continue
			}
			msg := *ev.Message
			if msg.SenderEmail == b.email {
				continue
			}
			msg.Content = stripMention(msg.Content)
			go b.handlers.HandleMessage(ctx, msg)
		}
	}
}

// stripMention drops the leading @-mention that addresses the bot in stream
// messages. Private messages arrive without one.
func stripMention(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "@**") {
		return content
	}
	if end := strings.Index(content, "**"); end >= 0 {
		if close := strings.Index(content[end+2:], "**"); close >= 0 {
			return strings.TrimSpace(content[end+2+close+2:])
		}
	}
	return content
}
