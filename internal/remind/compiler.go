package remind

import (
	"strings"
	"time"
)

// DefaultLeadMinutes is used when the text carries no lead-time expression.
const DefaultLeadMinutes = 15

// Reminder is the validated result of parsing one message.
type Reminder struct {
	OwnerID     string
	TriggerAt   time.Time // always strictly after the compile-time "now"
	LeadMinutes int
	Label       string // may be empty; policy is left to the inbound layer
}

// Compile turns raw text into a Reminder relative to an explicit now.
//
// now is a parameter (not read from the wall clock) so the year-rollover
// behavior is deterministic under test. loc is the fixed reference
// timezone all year-less dates are interpreted in. defaultLead <= 0 falls
// back to DefaultLeadMinutes.
func Compile(text string, now time.Time, loc *time.Location, defaultLead int) (Reminder, error) {
	if loc == nil {
		loc = time.Local
	}
	if defaultLead <= 0 {
		defaultLead = DefaultLeadMinutes
	}

	date, lead := Extract(text)
	if date == nil {
		return Reminder{}, ErrNoTimestamp
	}

	nowLoc := now.In(loc)

	year := date.Year
	if !date.HasYear {
		year = nowLoc.Year()
		// Nearest future occurrence: a month/day pair earlier than today's
		// pair rolls into next year.
		if date.Month < int(nowLoc.Month()) ||
			(date.Month == int(nowLoc.Month()) && date.Day < nowLoc.Day()) {
			year++
		}
	}

	if date.Hour > 23 || date.Minute > 59 {
		return Reminder{}, ErrInvalidCalendarDate
	}
	trigger := time.Date(year, time.Month(date.Month), date.Day, date.Hour, date.Minute, 0, 0, loc)
	// time.Date normalizes impossible combinations (Feb 30 -> Mar 2);
	// any drift from the parsed components means the date never existed.
	if trigger.Year() != year || int(trigger.Month()) != date.Month || trigger.Day() != date.Day {
		return Reminder{}, ErrInvalidCalendarDate
	}

	if !trigger.After(now) {
		return Reminder{}, ErrPastTime
	}

	minutes := defaultLead
	if lead != nil {
		minutes = lead.Minutes
	}
	if minutes < 0 {
		return Reminder{}, ErrInvalidLead
	}

	return Reminder{
		TriggerAt:   trigger,
		LeadMinutes: minutes,
		Label:       stripLabel(text, date, lead),
	}, nil
}

// stripLabel removes the matched date and lead spans from text and
// normalizes the remaining whitespace.
func stripLabel(text string, date *DateFragment, lead *LeadFragment) string {
	spans := make([]span, 0, 2)
	if date != nil {
		spans = append(spans, date.span)
	}
	if lead != nil {
		spans = append(spans, lead.span)
	}
	if len(spans) == 2 && spans[1].Start < spans[0].Start {
		spans[0], spans[1] = spans[1], spans[0]
	}
	// Merge overlaps so a byte is never cut twice.
	if len(spans) == 2 && spans[1].Start < spans[0].End {
		spans[0].End = maxInt(spans[0].End, spans[1].End)
		spans = spans[:1]
	}

	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(text[prev:sp.Start])
		prev = sp.End
	}
	b.WriteString(text[prev:])

	return strings.Join(strings.Fields(b.String()), " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
