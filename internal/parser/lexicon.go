package parser

import "time"

// Lexicon holds the token tables the classifier consults. It is plain
// configuration data: build one with DefaultLexicon and share it freely,
// or supply your own maps for a different locale.
type Lexicon struct {
	// Weekdays maps lowercase weekday names to time.Weekday.
	Weekdays map[string]time.Weekday
	// Units maps interval unit tokens (singular or plural) to their plural
	// form, which is the form handed to the scheduling boundary.
	Units map[string]string
	// TemplateUnits marks the units whose bare relative spans ("in 1 week")
	// route through the interval template instead of the date extractor.
	TemplateUnits map[string]bool
	// Frequencies maps word-numbers and ordinals to interval periods.
	Frequencies map[string]int
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Weekdays: map[string]time.Weekday{
			"monday":    time.Monday,
			"tuesday":   time.Tuesday,
			"wednesday": time.Wednesday,
			"thursday":  time.Thursday,
			"friday":    time.Friday,
			"saturday":  time.Saturday,
			"sunday":    time.Sunday,
		},
		Units: map[string]string{
			"minute": "minutes", "minutes": "minutes",
			"hour": "hours", "hours": "hours",
			"day": "days", "days": "days",
			"week": "weeks", "weeks": "weeks",
			"month": "months", "months": "months",
		},
		TemplateUnits: map[string]bool{
			"weeks":  true,
			"months": true,
		},
		Frequencies: map[string]int{
			"second": 2, "2nd": 2, "2": 2, "two": 2,
			"3": 3, "three": 3, "3rd": 3, "third": 3,
		},
	}
}

// weekdayNames are the five names "weekday" expands to, in calendar order.
var weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
