package parser

import (
	"strconv"
	"strings"
	"time"
)

// classification couples the derived trigger with the exact token spans it
// consumed, so body text is never re-derived by re-scanning.
type classification struct {
	trigger  Trigger
	clause   []string
	leftover []string
}

// clauseCtx is the working state of one recurring-clause classification: the
// clause head with the start/end bound phrases already split off.
type clauseCtx struct {
	p      *Parser
	head   []string
	start  []string
	end    []string
	offset float64
	now    time.Time
}

// rule is one (predicate, handler) pair of the classifier. Rules are
// evaluated in fixed order; the order encodes priority, since several
// patterns can co-occur in one clause.
type rule struct {
	name  string
	match func(*clauseCtx) bool
	build func(*clauseCtx) (Trigger, error)
}

func recurringRules() []rule {
	return []rule{
		{"day-of-month", matchDayOfMonth, buildDayOfMonth},
		{"weekday-list", matchWeekdayList, buildWeekdayList},
		{"interval", matchInterval, buildInterval},
		// Fallthrough: a single date phrase after "every" is promoted to a
		// weekly recurrence anchored on its weekday and time-of-day.
		{"date-promotion", func(*clauseCtx) bool { return true }, buildDatePromotion},
	}
}

func (p *Parser) classify(tokens []string, offset float64, now time.Time) (classification, error) {
	if every := lastIndexOf(tokens, "every"); every >= 0 {
		clause := tokens[every+1:]
		leftover := tokens[:every]
		// "repeat every ..." is the same recurring marker.
		if n := len(leftover); n > 0 && strings.EqualFold(leftover[n-1], "repeat") {
			leftover = leftover[:n-1]
		}
		trig, err := p.classifyRecurring(clause, offset, now)
		if err != nil {
			return classification{}, err
		}
		return classification{trigger: trig, clause: clause, leftover: leftover}, nil
	}
	return p.classifyBare(tokens, offset, now)
}

func (p *Parser) classifyRecurring(clause []string, offset float64, now time.Time) (Trigger, error) {
	head, start, end := splitBounds(clause)
	head = p.expandWeekday(head)
	c := &clauseCtx{p: p, head: head, start: start, end: end, offset: offset, now: now}
	for _, r := range recurringRules() {
		if r.match(c) {
			return r.build(c)
		}
	}
	return nil, ErrNoTemporalExpression
}

// splitBounds cuts the literal markers "start" and "end" out of a clause,
// returning the head and the two optional bound phrases.
func splitBounds(clause []string) (head, start, end []string) {
	section := 0
	for _, tok := range clause {
		switch strings.ToLower(tok) {
		case "start":
			section = 1
			continue
		case "end":
			section = 2
			continue
		}
		switch section {
		case 0:
			head = append(head, tok)
		case 1:
			start = append(start, tok)
		default:
			end = append(end, tok)
		}
	}
	return head, start, end
}

// expandWeekday replaces the token "weekday" with the five weekday names so
// the clause falls into the multi-day rule.
func (p *Parser) expandWeekday(head []string) []string {
	idx := -1
	for i, tok := range head {
		if strings.EqualFold(tok, "weekday") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return head
	}
	out := make([]string, 0, len(head)+len(weekdayNames)-1)
	out = append(out, head[:idx]...)
	out = append(out, weekdayNames...)
	out = append(out, head[idx+1:]...)
	return out
}

// ---- rule: every (last|first|1st) day of the month ----

func matchDayOfMonth(c *clauseCtx) bool {
	if len(c.head) == 0 {
		return false
	}
	first := strings.ToLower(c.head[0])
	if first != "last" && first != "first" && first != "1st" {
		return false
	}
	return containsFold(c.head, "day") && containsFold(c.head, "month")
}

func buildDayOfMonth(c *clauseCtx) (Trigger, error) {
	day := "1"
	if strings.EqualFold(c.head[0], "last") {
		day = "last"
	}
	hour, minute := defaultHour, defaultMinute
	if h, m, ok := c.clockAfterAt(); ok {
		hour, minute = h, m
	}
	trig := CalendarRecurring{DayOfMonth: day, Month: "*", Hour: hour, Minute: minute}
	c.resolveBounds(&trig.Start, &trig.End, hour, minute)
	return trig, nil
}

// ---- rule: two or more weekday names ----

func matchWeekdayList(c *clauseCtx) bool {
	return len(c.weekdays()) >= 2
}

func buildWeekdayList(c *clauseCtx) (Trigger, error) {
	days := c.weekdays()
	hour, minute := defaultHour, defaultMinute
	if h, m, ok := c.clockAfterAt(); ok {
		hour, minute = h, m
	}
	trig := CalendarRecurring{DaysOfWeek: days, Hour: hour, Minute: minute}
	c.resolveBounds(&trig.Start, &trig.End, hour, minute)
	return trig, nil
}

// weekdays collects the weekday names in the clause head, comma-tolerant and
// case-insensitive, preserving order of first appearance.
func (c *clauseCtx) weekdays() []time.Weekday {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, tok := range c.head {
		for _, part := range strings.Split(tok, ",") {
			d, ok := c.p.lex.Weekdays[strings.ToLower(strings.TrimSpace(part))]
			if ok && !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}
	return days
}

// ---- rule: frequency + interval unit ----

func matchInterval(c *clauseCtx) bool {
	for _, tok := range c.head {
		if _, ok := c.p.lex.Units[normalizeToken(tok)]; ok {
			return true
		}
	}
	return false
}

func buildInterval(c *clauseCtx) (Trigger, error) {
	return c.p.buildIntervalFrom(c.head, c.start, c.end, c.offset, c.now)
}

// buildIntervalFrom converts a "[N] unit [time]" clause into an interval
// trigger. The leading frequency defaults to 1; units are normalized to their
// plural form; a missing clock defaults to 09:00; the start bound is
// auto-advanced by one period when the first occurrence is not in the future.
func (p *Parser) buildIntervalFrom(head, startToks, endToks []string, offset float64, now time.Time) (Trigger, error) {
	freq := 1
	unitIdx := 0
	if len(head) > 0 {
		if n, err := strconv.Atoi(head[0]); err == nil && n > 0 {
			freq, unitIdx = n, 1
		} else if n, ok := p.lex.Frequencies[strings.ToLower(head[0])]; ok {
			freq, unitIdx = n, 1
		}
	}
	if unitIdx >= len(head) {
		return nil, ErrNoTemporalExpression
	}
	unit, ok := p.lex.Units[normalizeToken(head[unitIdx])]
	if !ok {
		// Frequency and unit were not adjacent; take the first unit token.
		found := -1
		for i := unitIdx; i < len(head); i++ {
			if u, uok := p.lex.Units[normalizeToken(head[i])]; uok {
				unit, found = u, i
				break
			}
		}
		if found < 0 {
			return nil, ErrNoTemporalExpression
		}
		unitIdx = found
	}

	rest := head[unitIdx+1:]
	if len(rest) == 0 {
		rest = []string{"at", "9:00"}
	}

	hour, minute := defaultHour, defaultMinute
	var anchor time.Time
	if ms := p.dates.Search(strings.Join(rest, " "), now); len(ms) > 0 {
		anchor = applyTimezoneOffset(ms[len(ms)-1].Time, offset)
		hour, minute = anchor.Hour(), anchor.Minute()
	} else {
		anchor = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	}

	trig := IntervalRecurring{Unit: unit, Period: freq}
	if s, ok := p.resolveBound(startToks, hour, minute, now); ok {
		trig.Start = &s
	} else {
		first := anchor
		if !first.After(now) {
			first = addPeriod(first, unit, freq)
		}
		trig.Start = &first
	}
	if e, ok := p.resolveBound(endToks, hour, minute, now); ok {
		trig.End = &e
	}
	return trig, nil
}

// ---- rule: date phrase promoted to a weekly recurrence ----

func buildDatePromotion(c *clauseCtx) (Trigger, error) {
	if len(c.head) == 0 {
		return nil, ErrNoTemporalExpression
	}
	ms := c.p.dates.Search(strings.Join(c.head, " "), c.now)
	if len(ms) == 0 {
		return nil, ErrNoTemporalExpression
	}
	t := applyTimezoneOffset(ms[len(ms)-1].Time, c.offset)
	t = rolloverCalendar(t, c.now, hasExplicitClock(c.head))
	trig := CalendarRecurring{
		DaysOfWeek: []time.Weekday{t.Weekday()},
		Hour:       t.Hour(),
		Minute:     t.Minute(),
	}
	c.resolveBounds(&trig.Start, &trig.End, t.Hour(), t.Minute())
	return trig, nil
}

// ---- bare commands: no recurrence marker ----

func (p *Parser) classifyBare(tokens []string, offset float64, now time.Time) (classification, error) {
	joined := strings.Join(tokens, " ")
	if ms := p.dates.Search(joined, now); len(ms) > 0 {
		m := ms[len(ms)-1]
		span := trimPrepositions(strings.Fields(m.Text))
		if freq, unit, ok := p.frequencyUnitSpan(span); ok && p.lex.TemplateUnits[unit] {
			// Long relative spans ("in 1 week") route through the interval
			// template rather than the extracted instant.
			return p.bareInterval(tokens, span, freq, unit, offset, now)
		}
		return classification{
			trigger:  OneShot{FireAt: applyTimezoneOffset(m.Time, offset)},
			clause:   strings.Fields(m.Text),
			leftover: removeSpan(tokens, m.Text),
		}, nil
	}

	// Extractor found nothing; fall back to a trailing "[in] N unit" span.
	span, body := splitRelativeSpan(tokens, p.lex)
	if span != nil {
		bare := trimPrepositions(span)
		freq, unit, ok := p.frequencyUnitSpan(bare)
		if !ok {
			return classification{}, ErrNoTemporalExpression
		}
		if p.lex.TemplateUnits[unit] {
			return p.bareInterval(tokens, bare, freq, unit, offset, now)
		}
		// Short units: deadline arithmetic from the submission instant.
		return classification{
			trigger:  OneShot{FireAt: addPeriod(now, unit, freq)},
			clause:   span,
			leftover: body,
		}, nil
	}
	return classification{}, ErrNoTemporalExpression
}

func (p *Parser) bareInterval(tokens, span []string, freq int, unit string, offset float64, now time.Time) (classification, error) {
	head := []string{strconv.Itoa(freq), unit}
	trig, err := p.buildIntervalFrom(head, nil, nil, offset, now)
	if err != nil {
		return classification{}, err
	}
	return classification{
		trigger:  trig,
		clause:   span,
		leftover: removeSpan(tokens, strings.Join(span, " ")),
	}, nil
}

// frequencyUnitSpan reports whether span is exactly "[N] unit", returning the
// resolved frequency (1 when absent) and pluralized unit.
func (p *Parser) frequencyUnitSpan(span []string) (int, string, bool) {
	switch len(span) {
	case 1:
		unit, ok := p.lex.Units[normalizeToken(span[0])]
		return 1, unit, ok
	case 2:
		unit, ok := p.lex.Units[normalizeToken(span[1])]
		if !ok {
			return 0, "", false
		}
		if n, err := strconv.Atoi(span[0]); err == nil && n > 0 {
			return n, unit, true
		}
		if n, fok := p.lex.Frequencies[strings.ToLower(span[0])]; fok {
			return n, unit, true
		}
		return 0, "", false
	default:
		return 0, "", false
	}
}

// splitRelativeSpan peels a trailing "[in] [N] unit" off the token stream.
func splitRelativeSpan(tokens []string, lex Lexicon) (span, body []string) {
	n := len(tokens)
	if n == 0 {
		return nil, tokens
	}
	if _, ok := lex.Units[normalizeToken(tokens[n-1])]; !ok {
		return nil, tokens
	}
	start := n - 1
	if start > 0 {
		tok := tokens[start-1]
		if _, err := strconv.Atoi(tok); err == nil {
			start--
		} else if _, ok := lex.Frequencies[strings.ToLower(tok)]; ok {
			start--
		}
	}
	if start > 0 && strings.EqualFold(tokens[start-1], "in") {
		start--
	}
	return tokens[start:], tokens[:start]
}

// ---- shared clause helpers ----

// clockAfterAt finds the literal "at" and parses the token after it as
// HH:MM, already corrected by the timezone offset.
func (c *clauseCtx) clockAfterAt() (int, int, bool) {
	for i, tok := range c.head {
		if strings.EqualFold(tok, "at") && i+1 < len(c.head) {
			if h, m, ok := parseClock(normalizeToken(c.head[i+1])); ok {
				h, m = clockWithOffset(h, m, c.offset)
				return h, m, true
			}
		}
	}
	return 0, 0, false
}

func (c *clauseCtx) resolveBounds(start, end **time.Time, hour, minute int) {
	if s, ok := c.p.resolveBound(c.start, hour, minute, c.now); ok {
		*start = &s
	}
	if e, ok := c.p.resolveBound(c.end, hour, minute, c.now); ok {
		*end = &e
	}
}

// resolveBound runs a start/end bound phrase through the date extractor and
// overrides its clock to the trigger's computed firing time.
func (p *Parser) resolveBound(toks []string, hour, minute int, now time.Time) (time.Time, bool) {
	if len(toks) == 0 {
		return time.Time{}, false
	}
	ms := p.dates.Search(strings.Join(toks, " "), now)
	if len(ms) == 0 {
		return time.Time{}, false
	}
	return withClock(ms[len(ms)-1].Time, hour, minute), true
}

func lastIndexOf(tokens []string, literal string) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if strings.EqualFold(tokens[i], literal) {
			return i
		}
	}
	return -1
}

func containsFold(tokens []string, literal string) bool {
	for _, tok := range tokens {
		if strings.EqualFold(normalizeToken(tok), literal) {
			return true
		}
	}
	return false
}

// normalizeToken lowercases and strips a trailing comma.
func normalizeToken(tok string) string {
	return strings.ToLower(strings.TrimSuffix(tok, ","))
}

func trimPrepositions(span []string) []string {
	for len(span) > 0 {
		switch strings.ToLower(span[0]) {
		case "in", "on", "at":
			span = span[1:]
		default:
			return span
		}
	}
	return span
}

// removeSpan cuts the first occurrence of span text out of the token stream
// and drops a dangling preposition left at the cut.
func removeSpan(tokens []string, span string) []string {
	joined := strings.Join(tokens, " ")
	idx := strings.LastIndex(strings.ToLower(joined), strings.ToLower(span))
	if idx < 0 {
		return tokens
	}
	left := strings.Fields(joined[:idx])
	right := strings.Fields(joined[idx+len(span):])
	if n := len(left); n > 0 {
		switch strings.ToLower(left[n-1]) {
		case "in", "on", "at":
			left = left[:n-1]
		}
	}
	return append(left, right...)
}
