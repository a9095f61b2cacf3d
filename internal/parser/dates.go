package parser

import (
	"time"

	"github.com/markusmobius/go-dateparser"
)

// DateMatch is one date/time expression found inside free text.
type DateMatch struct {
	Text string    // the matched substring, verbatim
	Time time.Time // the resolved absolute instant
}

// DateSearcher finds candidate date/time substrings in free text, in order
// of appearance. An empty result is a valid outcome, not an error. The
// classifier always takes the last match as the governing instant.
type DateSearcher interface {
	Search(text string, now time.Time) []DateMatch
}

type dateparserSearcher struct{}

// NewDateSearcher returns a DateSearcher backed by go-dateparser with the
// current-period bias: bare time-of-day expressions resolve against the
// nearest occurrence rather than a fixed epoch.
func NewDateSearcher() DateSearcher {
	return dateparserSearcher{}
}

func (dateparserSearcher) Search(text string, now time.Time) []DateMatch {
	cfg := &dateparser.Configuration{
		Languages:           []string{"en"},
		CurrentTime:         now,
		PreferredDateSource: dateparser.CurrentPeriod,
	}
	_, results, err := dateparser.Search(cfg, text)
	if err != nil {
		return nil
	}
	matches := make([]DateMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, DateMatch{Text: r.Text, Time: r.Date.Time})
	}
	return matches
}
