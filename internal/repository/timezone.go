package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/logivations/zulip-reminder/internal/database"
	"github.com/logivations/zulip-reminder/internal/models"
	"github.com/logivations/zulip-reminder/internal/parser"
)

type TimezoneRepository struct {
	db *database.DB
}

func NewTimezoneRepository(db *database.DB) *TimezoneRepository {
	return &TimezoneRepository{db: db}
}

func (r *TimezoneRepository) Set(ctx context.Context, userEmail, zone string) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO user_timezones (user_email, zone, updated_at)
		 VALUES ($1, $2, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_email) DO UPDATE SET zone = EXCLUDED.zone, updated_at = CURRENT_TIMESTAMP`,
		userEmail, zone,
	)
	return err
}

// Get returns the stored timezone for a user, or parser.ErrTimezoneNotSet
// when the user never set one.
func (r *TimezoneRepository) Get(ctx context.Context, userEmail string) (*models.UserTimezone, error) {
	tz := &models.UserTimezone{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_email, zone, updated_at FROM user_timezones WHERE user_email = $1`,
		userEmail,
	).Scan(&tz.UserEmail, &tz.Zone, &tz.UpdatedAt)
	if err != nil {
		return nil, timezoneErr(err)
	}
	return tz, nil
}

// timezoneErr keeps the storage detail out of callers: a missing row means
// the sender has no registered zone, which is the parser's sentinel.
func timezoneErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return parser.ErrTimezoneNotSet
	}
	return err
}
