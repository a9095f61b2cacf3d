package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/logivations/zulip-reminder/internal/parser"
	"github.com/logivations/zulip-reminder/internal/zulip"
)

func (h *Handlers) handleTimezone(ctx context.Context, msg zulip.IncomingMessage, args []string) {
	if len(args) == 0 {
		tz, err := h.repos.Timezone.Get(ctx, msg.SenderEmail)
		if errors.Is(err, parser.ErrTimezoneNotSet) {
			h.reply(ctx, msg, "You have no timezone set. Tell me with `timezone Europe/Berlin`.")
			return
		}
		if err != nil {
			log.Printf("Failed to load timezone for %s: %v", msg.SenderEmail, err)
			h.reply(ctx, msg, "Something went wrong, please try again.")
			return
		}
		h.reply(ctx, msg, fmt.Sprintf("Your timezone is %s.", tz.Zone))
		return
	}

	zone := args[0]
	if _, err := time.LoadLocation(zone); err != nil {
		h.reply(ctx, msg, fmt.Sprintf("%q is not a timezone I know. Use an IANA name like `Europe/Berlin`.", zone))
		return
	}

	if err := h.repos.Timezone.Set(ctx, msg.SenderEmail, zone); err != nil {
		log.Printf("Failed to store timezone for %s: %v", msg.SenderEmail, err)
		h.reply(ctx, msg, "Something went wrong, please try again.")
		return
	}
	h.reply(ctx, msg, fmt.Sprintf("Timezone set to %s.", zone))
}
