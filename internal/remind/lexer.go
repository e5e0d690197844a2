package remind

import "regexp"

// span is a half-open byte range [Start, End) into the original text.
// The compiler uses it to strip matched fragments out of the label.
type span struct {
	Start int
	End   int
}

// DateFragment is the raw integer components of a matched date/time
// expression. Year is 0 and HasYear false when the text carried no year.
type DateFragment struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int

	HasYear bool
	Pattern string // name of the pattern row that matched
	span    span
}

// LeadFragment is a matched lead-time expression ("提前10分鐘提醒").
type LeadFragment struct {
	Minutes int
	span    span
}

// datePattern is one row of the priority table. Rows are evaluated top to
// bottom and the first match wins, so explicit-year forms must sit above
// their year-less counterparts or the year would be dropped silently.
type datePattern struct {
	name    string
	re      *regexp.Regexp
	hasYear bool
}

var datePatterns = []datePattern{
	{
		name:    "cjk-year",
		re:      regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日\s*(\d{1,2})[:：](\d{2})`),
		hasYear: true,
	},
	{
		name: "cjk-monthday",
		re:   regexp.MustCompile(`(\d{1,2})月(\d{1,2})日\s*(\d{1,2})[:：](\d{2})`),
	},
	{
		name:    "numeric-year",
		re:      regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})\s+(\d{1,2})[:：](\d{2})`),
		hasYear: true,
	},
	{
		name: "numeric",
		re:   regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})\s+(\d{1,2})[:：](\d{2})`),
	},
}

// leadRe matches a cardinal number followed by a minutes unit word, with an
// optional 提前/提早 qualifier and optional trailing 前/提醒 so the whole
// expression disappears from the label.
var leadRe = regexp.MustCompile(`(?:提前|提早)?(\d{1,4})\s*分(?:鐘|钟)?前?(?:提醒)?`)

// Extract scans text for a date/time fragment and, independently, a
// lead-time fragment. Either result may be nil. The function is pure and
// idempotent; calling it twice with the same input yields the same output.
func Extract(text string) (*DateFragment, *LeadFragment) {
	return extractDate(text), extractLead(text)
}

func extractDate(text string) *DateFragment {
	for _, p := range datePatterns {
		loc := p.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		groups := make([]int, 0, 5)
		for g := 1; g*2+1 < len(loc); g++ {
			groups = append(groups, atoiBytes(text[loc[g*2]:loc[g*2+1]]))
		}
		f := &DateFragment{
			HasYear: p.hasYear,
			Pattern: p.name,
			span:    span{Start: loc[0], End: loc[1]},
		}
		if p.hasYear {
			f.Year, f.Month, f.Day, f.Hour, f.Minute = groups[0], groups[1], groups[2], groups[3], groups[4]
		} else {
			f.Month, f.Day, f.Hour, f.Minute = groups[0], groups[1], groups[2], groups[3]
		}
		return f
	}
	return nil
}

func extractLead(text string) *LeadFragment {
	loc := leadRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	return &LeadFragment{
		Minutes: atoiBytes(text[loc[2]:loc[3]]),
		span:    span{Start: loc[0], End: loc[1]},
	}
}

// atoiBytes parses a small non-negative decimal already vetted by the
// regexps, so no error path is needed.
func atoiBytes(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
