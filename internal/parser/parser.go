package parser

import (
	"strings"
	"time"
)

// Parser turns raw reminder commands into parsed intents. It is a pure,
// synchronous computation: given a command, an offset and a "now", the result
// is deterministic, and concurrent parses share nothing.
type Parser struct {
	lex   Lexicon
	dates DateSearcher
}

func New(dates DateSearcher) *Parser {
	return NewWithLexicon(DefaultLexicon(), dates)
}

func NewWithLexicon(lex Lexicon, dates DateSearcher) *Parser {
	return &Parser{lex: lex, dates: dates}
}

// Parse interprets cmd into a recipient, body text and trigger descriptor.
// offset is the signed fractional-hour correction (server zone minus the
// sender's registered zone); callers must resolve it first and fail with
// ErrTimezoneNotSet when the sender has no registered zone.
func (p *Parser) Parse(cmd Command, offset float64, now time.Time) (*ParsedIntent, error) {
	recipient, rest := resolveRecipient(strings.Fields(cmd.Text), cmd.Context)

	prefix := ""
	if len(rest) > 0 && (rest[0] == "to" || rest[0] == "about") {
		prefix = rest[0]
		rest = rest[1:]
	}

	quotedBody, remainder, quoted := extractQuoted(strings.Join(rest, " "))
	rest = strings.Fields(remainder)

	c, err := p.classify(rest, offset, now)
	if err != nil {
		return nil, err
	}

	body := strings.Join(c.leftover, " ")
	if quoted {
		body = quotedBody
	}

	return &ParsedIntent{
		Recipient:      recipient,
		IsStream:       recipient.IsStream(),
		Prefix:         prefix,
		BodyText:       body,
		TemporalClause: c.clause,
		Trigger:        c.trigger,
	}, nil
}
