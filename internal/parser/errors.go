package parser

import "errors"

var (
	// ErrNoTemporalExpression means no date or time clause could be
	// classified. Surfaced to the user as invalid-input guidance.
	ErrNoTemporalExpression = errors.New("no date or time expression found")

	// ErrTimezoneNotSet means the sender has not registered a timezone.
	// Scheduling must not proceed on an assumed zone.
	ErrTimezoneNotSet = errors.New("timezone not set")
)
