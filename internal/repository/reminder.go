package repository

import (
	"context"
	"time"

	"github.com/logivations/zulip-reminder/internal/database"
	"github.com/logivations/zulip-reminder/internal/models"
)

const reminderColumns = `reminders_id, user_email, is_stream, recipient, stream_id, topic, content, phrase,
	 cron_spec, recurrence_rule, dtstart, remind_at, stop_date, active, created_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (user_email, is_stream, recipient, stream_id, topic, content, phrase,
		 cron_spec, recurrence_rule, dtstart, remind_at, stop_date, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING reminders_id, created_at`,
		reminder.UserEmail, reminder.IsStream, reminder.Recipient, reminder.StreamID, reminder.Topic,
		reminder.Content, reminder.Phrase, reminder.CronSpec, reminder.RecurrenceRule,
		reminder.Dtstart, reminder.RemindAt, reminder.StopDate, reminder.Active,
	).Scan(&reminder.ReminderID, &reminder.CreatedAt)
}

func (r *ReminderRepository) GetByUser(ctx context.Context, userEmail string) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders WHERE user_email = $1 ORDER BY reminders_id ASC`,
		userEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// GetDue returns active reminders whose next delivery time has arrived.
func (r *ReminderRepository) GetDue(ctx context.Context, until time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders WHERE active = true AND remind_at IS NOT NULL AND remind_at <= $1
		 ORDER BY remind_at ASC`,
		until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) UpdateRemindAt(ctx context.Context, reminderID int, remindAt *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET remind_at = $1 WHERE reminders_id = $2`,
		remindAt, reminderID,
	)
	return err
}

func (r *ReminderRepository) SetActive(ctx context.Context, reminderID int, active bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET active = $1 WHERE reminders_id = $2`,
		active, reminderID,
	)
	return err
}

// Delete removes a reminder owned by the given user. Returns true when a row
// was actually deleted, so callers can tell a wrong id from a wrong owner.
func (r *ReminderRepository) Delete(ctx context.Context, reminderID int, userEmail string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE reminders_id = $1 AND user_email = $2`,
		reminderID, userEmail,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := row.Scan(&reminder.ReminderID, &reminder.UserEmail, &reminder.IsStream, &reminder.Recipient,
		&reminder.StreamID, &reminder.Topic, &reminder.Content, &reminder.Phrase, &reminder.CronSpec,
		&reminder.RecurrenceRule, &reminder.Dtstart, &reminder.RemindAt, &reminder.StopDate,
		&reminder.Active, &reminder.CreatedAt)
	if err != nil {
		return nil, err
	}
	return reminder, nil
}
