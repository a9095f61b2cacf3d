package parser

import (
	"strings"
	"time"
)

// ContextType says where a command arrived: the bot's private chat or a
// stream the bot was mentioned in.
type ContextType string

const (
	ContextPrivate ContextType = "private"
	ContextStream  ContextType = "stream"
)

// Context is the ambient conversation a command was issued in.
type Context struct {
	Type     ContextType
	StreamID int
	Topic    string
}

// Command is one incoming reminder command. Immutable; built once per message.
type Command struct {
	Text        string
	SenderEmail string
	SenderName  string
	Timestamp   time.Time
	Context     Context
}

// RecipientKind tags the resolved target of a command.
type RecipientKind int

const (
	RecipientSelf RecipientKind = iota
	RecipientUser
	RecipientStream
	RecipientAmbientStream
)

// RecipientRef is the command target resolved to a single canonical shape.
// Translation of Name to a platform id happens at the chat client boundary.
type RecipientRef struct {
	Kind     RecipientKind
	Name     string
	StreamID int // set for RecipientAmbientStream
}

// IsStream reports whether delivery goes to a stream rather than a person.
func (r RecipientRef) IsStream() bool {
	return r.Kind == RecipientStream || r.Kind == RecipientAmbientStream
}

// ParsedIntent is the full interpretation of a command: the resolved
// recipient, the message body, the temporal clause the classifier consumed,
// and the derived trigger.
type ParsedIntent struct {
	Recipient      RecipientRef
	IsStream       bool
	Prefix         string // "to", "about" or ""
	BodyText       string
	TemporalClause []string
	Trigger        Trigger
}

// resolveRecipient classifies the leading tokens of a command and returns
// the recipient together with the unconsumed remainder. Malformed mention or
// stream syntax recovers with the best-effort substring instead of failing.
func resolveRecipient(tokens []string, ctx Context) (RecipientRef, []string) {
	if len(tokens) == 0 {
		return RecipientRef{Kind: RecipientSelf}, nil
	}
	head := tokens[0]
	switch {
	case strings.HasPrefix(head, "@"):
		// Mentions span two tokens: @**First Last**.
		if len(tokens) >= 2 {
			name := cleanMention(head + " " + tokens[1])
			return RecipientRef{Kind: RecipientUser, Name: name}, tokens[2:]
		}
		return RecipientRef{Kind: RecipientUser, Name: cleanMention(head)}, tokens[1:]
	case strings.HasPrefix(head, "#"):
		// Stream names run until the token carrying the closing marker.
		for i, tok := range tokens {
			if strings.HasSuffix(tok, "**") {
				name := cleanMention(strings.Join(tokens[:i+1], " "))
				return RecipientRef{Kind: RecipientStream, Name: name}, tokens[i+1:]
			}
		}
		// No closing marker: take the first token as-is. Known leniency.
		return RecipientRef{Kind: RecipientStream, Name: cleanMention(head)}, tokens[1:]
	case head == "me":
		return RecipientRef{Kind: RecipientSelf}, tokens[1:]
	case head == "here":
		if ctx.Type == ContextStream {
			return RecipientRef{Kind: RecipientAmbientStream, StreamID: ctx.StreamID}, tokens[1:]
		}
		return RecipientRef{Kind: RecipientSelf}, tokens[1:]
	default:
		// Legacy form: a bare leading token addresses a stream by name.
		return RecipientRef{Kind: RecipientStream, Name: head}, tokens[1:]
	}
}

func cleanMention(s string) string {
	s = strings.ReplaceAll(s, "@", "")
	s = strings.ReplaceAll(s, "#", "")
	return strings.ReplaceAll(s, "*", "")
}

// extractQuoted pulls the verbatim body out of a command containing exactly
// two quote characters, protecting embedded dates and numbers from temporal
// classification. Returns the body and the text with the quoted run removed,
// or ok=false when the quoting rule does not apply.
func extractQuoted(text string) (body, remainder string, ok bool) {
	if strings.Count(text, `"`) != 2 {
		return "", text, false
	}
	open := strings.Index(text, `"`)
	close := strings.LastIndex(text, `"`)
	body = text[open+1 : close]
	remainder = strings.TrimSpace(strings.TrimSpace(text[:open]) + " " + strings.TrimSpace(text[close+1:]))
	return body, remainder, true
}
