package remind

import (
	"testing"
)

func TestExtractDatePatterns(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		pattern string
		hasYear bool
		year    int
		month   int
		day     int
		hour    int
		minute  int
	}{
		{name: "cjk monthday", text: "6月12日 15:30 看牙醫", pattern: "cjk-monthday", month: 6, day: 12, hour: 15, minute: 30},
		{name: "cjk with year", text: "2023年6月12日 15:30 開會", pattern: "cjk-year", hasYear: true, year: 2023, month: 6, day: 12, hour: 15, minute: 30},
		{name: "cjk fullwidth colon", text: "6月12日 15：30 開會", pattern: "cjk-monthday", month: 6, day: 12, hour: 15, minute: 30},
		{name: "numeric slash", text: "6/12 15:30 買菜", pattern: "numeric", month: 6, day: 12, hour: 15, minute: 30},
		{name: "numeric dash", text: "6-12 09:05 開會", pattern: "numeric", month: 6, day: 12, hour: 9, minute: 5},
		{name: "numeric with year", text: "2025/6/12 15:30 出差", pattern: "numeric-year", hasYear: true, year: 2025, month: 6, day: 12, hour: 15, minute: 30},
		{name: "iso style", text: "2025-06-12 15:30 出差", pattern: "numeric-year", hasYear: true, year: 2025, month: 6, day: 12, hour: 15, minute: 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f, _ := Extract(tt.text)
			if f == nil {
				t.Fatalf("Extract(%q) returned no date fragment", tt.text)
			}
			if f.Pattern != tt.pattern {
				t.Fatalf("Pattern = %s, want %s", f.Pattern, tt.pattern)
			}
			if f.HasYear != tt.hasYear || f.Year != tt.year {
				t.Fatalf("year = (%v,%d), want (%v,%d)", f.HasYear, f.Year, tt.hasYear, tt.year)
			}
			if f.Month != tt.month || f.Day != tt.day || f.Hour != tt.hour || f.Minute != tt.minute {
				t.Fatalf("components = %d/%d %d:%d, want %d/%d %d:%d",
					f.Month, f.Day, f.Hour, f.Minute, tt.month, tt.day, tt.hour, tt.minute)
			}
		})
	}
}

func TestExtractPriorityKeepsExplicitYear(t *testing.T) {
	t.Parallel()
	// The year-less row would happily match "6月12日 15:30" inside this
	// text; the ordered table must hand the win to the year form.
	f, _ := Extract("2030年6月12日 15:30 開會")
	if f == nil || !f.HasYear || f.Year != 2030 {
		t.Fatalf("explicit year lost: %+v", f)
	}
}

func TestExtractNoDate(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"", "明天記得吃藥", "hello world", "15:30"} {
		if f, _ := Extract(text); f != nil {
			t.Fatalf("Extract(%q) = %+v, want nil", text, f)
		}
	}
}

func TestExtractLead(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		want    int
		present bool
	}{
		{name: "qualifier prefix", text: "開會 提前10分鐘提醒", want: 10, present: true},
		{name: "suffix form", text: "開會 10分鐘前提醒", want: 10, present: true},
		{name: "bare minutes", text: "開會 30分鐘", want: 30, present: true},
		{name: "simplified unit", text: "开会 提前5分钟提醒", want: 5, present: true},
		{name: "absent", text: "6月12日 15:30 看牙醫", present: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, lead := Extract(tt.text)
			if !tt.present {
				if lead != nil {
					t.Fatalf("Extract(%q) lead = %+v, want nil", tt.text, lead)
				}
				return
			}
			if lead == nil {
				t.Fatalf("Extract(%q) found no lead fragment", tt.text)
			}
			if lead.Minutes != tt.want {
				t.Fatalf("Minutes = %d, want %d", lead.Minutes, tt.want)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	t.Parallel()
	const text = "6月12日 15:30 看牙醫 提前20分鐘提醒"
	d1, l1 := Extract(text)
	d2, l2 := Extract(text)
	if *d1 != *d2 || *l1 != *l2 {
		t.Fatalf("Extract is not idempotent: %+v/%+v vs %+v/%+v", d1, l1, d2, l2)
	}
}
