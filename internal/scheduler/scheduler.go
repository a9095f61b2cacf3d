package scheduler

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/logivations/zulip-reminder/internal/cronspec"
	"github.com/logivations/zulip-reminder/internal/models"
	"github.com/logivations/zulip-reminder/internal/repository"
	"github.com/logivations/zulip-reminder/internal/rrule"
	"github.com/logivations/zulip-reminder/internal/zulip"
)

const defaultTopic = "reminders"

type Scheduler struct {
	client        *zulip.Client
	reminderRepo  *repository.ReminderRepository
	checkInterval time.Duration
	notifyCh      chan struct{}
}

func New(client *zulip.Client, reminderRepo *repository.ReminderRepository) *Scheduler {
	return &Scheduler{
		client:        client,
		reminderRepo:  reminderRepo,
		checkInterval: 1 * time.Minute,
		notifyCh:      make(chan struct{}, 1),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Wait a bit for migrations to complete before first check
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	now := time.Now()
	reminders, err := s.reminderRepo.GetDue(ctx, now)
	if err != nil {
		log.Printf("Failed to get due reminders: %v", err)
		return
	}

	for _, reminder := range reminders {
		if err := s.deliver(ctx, reminder); err != nil {
			log.Printf("Failed to deliver reminder %d: %v", reminder.ReminderID, err)
			continue
		}
		s.advance(ctx, reminder, now)
	}
}

func (s *Scheduler) deliver(ctx context.Context, reminder *models.Reminder) error {
	msg := zulip.Message{Content: reminder.Content}
	if reminder.IsStream {
		msg.Type = "stream"
		msg.Topic = reminder.Topic
		if msg.Topic == "" {
			msg.Topic = defaultTopic
		}
		if reminder.StreamID != nil {
			msg.To = strconv.Itoa(*reminder.StreamID)
		} else {
			msg.To = reminder.Recipient
		}
	} else {
		msg.Type = "private"
		msg.To = reminder.Recipient
	}

	if err := s.client.SendMessage(ctx, msg); err != nil {
		return err
	}
	log.Printf("Sent reminder %d to %s", reminder.ReminderID, msg.To)
	return nil
}

// advance schedules the next delivery for recurring reminders and retires
// everything else. A reminder past its stop date is retired, not rescheduled.
func (s *Scheduler) advance(ctx context.Context, reminder *models.Reminder, now time.Time) {
	if !reminder.IsRecurring() {
		if err := s.reminderRepo.SetActive(ctx, reminder.ReminderID, false); err != nil {
			log.Printf("Failed to deactivate reminder %d: %v", reminder.ReminderID, err)
		}
		return
	}

	next, err := s.nextOccurrence(reminder, now)
	if err != nil {
		log.Printf("Failed to calculate next occurrence for reminder %d: %v", reminder.ReminderID, err)
		next = nil
	}
	if next != nil && reminder.StopDate != nil && next.After(*reminder.StopDate) {
		next = nil
	}

	if next == nil {
		if err := s.reminderRepo.SetActive(ctx, reminder.ReminderID, false); err != nil {
			log.Printf("Failed to deactivate reminder %d: %v", reminder.ReminderID, err)
		}
		return
	}

	if err := s.reminderRepo.UpdateRemindAt(ctx, reminder.ReminderID, next); err != nil {
		log.Printf("Failed to reschedule reminder %d: %v", reminder.ReminderID, err)
		return
	}
	log.Printf("Scheduled next delivery of reminder %d at %s", reminder.ReminderID, next.Format("2006-01-02 15:04"))
}

func (s *Scheduler) nextOccurrence(reminder *models.Reminder, now time.Time) (*time.Time, error) {
	if reminder.CronSpec != "" {
		next, err := cronspec.Next(reminder.CronSpec, now)
		if err != nil {
			return nil, err
		}
		return &next, nil
	}

	dtstart := now
	if reminder.Dtstart != nil {
		dtstart = *reminder.Dtstart
	}
	return rrule.NextOccurrence(reminder.RecurrenceRule, dtstart, now)
}
