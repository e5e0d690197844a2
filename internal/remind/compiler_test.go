package remind

import (
	"errors"
	"testing"
	"time"
)

// Fixed reference zone (UTC+8) so tests don't depend on system tzdata.
var taipei = time.FixedZone("CST", 8*3600)

func TestCompileBasic(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	r, err := Compile("6月12日 15:30 看牙醫", now, taipei, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	want := time.Date(2024, 6, 12, 15, 30, 0, 0, taipei)
	if !r.TriggerAt.Equal(want) {
		t.Fatalf("TriggerAt = %v, want %v", r.TriggerAt, want)
	}
	if r.LeadMinutes != 15 {
		t.Fatalf("LeadMinutes = %d, want default 15", r.LeadMinutes)
	}
	if r.Label != "看牙醫" {
		t.Fatalf("Label = %q, want %q", r.Label, "看牙醫")
	}
}

func TestCompileYearRollover(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		now  time.Time
		text string
		year int
	}{
		{
			name: "earlier month rolls forward",
			now:  time.Date(2024, 6, 15, 10, 0, 0, 0, taipei),
			text: "6月12日 15:30 看牙醫",
			year: 2025,
		},
		{
			name: "earlier day same month rolls forward",
			now:  time.Date(2024, 6, 13, 10, 0, 0, 0, taipei),
			text: "6月12日 15:30 看牙醫",
			year: 2025,
		},
		{
			name: "later date stays",
			now:  time.Date(2024, 1, 1, 0, 0, 0, 0, taipei),
			text: "6月12日 15:30 看牙醫",
			year: 2024,
		},
		{
			name: "same day keeps year",
			now:  time.Date(2024, 6, 12, 9, 0, 0, 0, taipei),
			text: "6月12日 15:30 看牙醫",
			year: 2024,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(tt.text, tt.now, taipei, 0)
			if err != nil {
				t.Fatalf("Compile error: %v", err)
			}
			if r.TriggerAt.Year() != tt.year {
				t.Fatalf("year = %d, want %d", r.TriggerAt.Year(), tt.year)
			}
		})
	}
}

func TestCompileExplicitYearUsedVerbatim(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	// An explicit past year is not rolled forward; it fails as past time.
	_, err := Compile("2023年6月12日 15:30 開會 提前10分鐘提醒", now, taipei, 0)
	if !errors.Is(err, ErrPastTime) {
		t.Fatalf("err = %v, want ErrPastTime", err)
	}

	r, err := Compile("2025年6月12日 15:30 開會", now, taipei, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if r.TriggerAt.Year() != 2025 {
		t.Fatalf("year = %d, want 2025", r.TriggerAt.Year())
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	tests := []struct {
		name string
		text string
		want error
	}{
		{name: "no timestamp", text: "記得吃藥", want: ErrNoTimestamp},
		{name: "empty", text: "", want: ErrNoTimestamp},
		{name: "impossible day", text: "2月30日 12:00 開會", want: ErrInvalidCalendarDate},
		{name: "day 31 in june", text: "6月31日 12:00 開會", want: ErrInvalidCalendarDate},
		{name: "hour out of range", text: "6月12日 25:00 開會", want: ErrInvalidCalendarDate},
		{name: "exact now is past", text: "1月1日 00:00 跨年", want: ErrPastTime},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.text, now, taipei, 0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compile(%q) err = %v, want %v", tt.text, err, tt.want)
			}
		})
	}
}

func TestCompileLeadMinutes(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	r, err := Compile("6月12日 15:30 開會 提前10分鐘提醒", now, taipei, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if r.LeadMinutes != 10 {
		t.Fatalf("LeadMinutes = %d, want 10", r.LeadMinutes)
	}
	if r.Label != "開會" {
		t.Fatalf("Label = %q, want %q", r.Label, "開會")
	}

	// Configured default replaces the built-in 15 when no lead is given.
	r, err = Compile("6月12日 15:30 開會", now, taipei, 30)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if r.LeadMinutes != 30 {
		t.Fatalf("LeadMinutes = %d, want configured 30", r.LeadMinutes)
	}
}

func TestCompileEmptyLabelAllowed(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	r, err := Compile("6月12日 15:30", now, taipei, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if r.Label != "" {
		t.Fatalf("Label = %q, want empty", r.Label)
	}
}

func TestCompileLabelAroundFragments(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	// Label text on both sides of the stripped fragments collapses to a
	// single spaced string.
	r, err := Compile("提前10分鐘提醒 6月12日 15:30 和客戶 開會", now, taipei, 0)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	if r.Label != "和客戶 開會" {
		t.Fatalf("Label = %q, want %q", r.Label, "和客戶 開會")
	}
}

func TestCompileDeterministic(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, taipei)
	a, errA := Compile("4月1日 09:00 繳房租", now, taipei, 0)
	b, errB := Compile("4月1日 09:00 繳房租", now, taipei, 0)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v / %v", errA, errB)
	}
	if !a.TriggerAt.Equal(b.TriggerAt) || a.LeadMinutes != b.LeadMinutes || a.Label != b.Label {
		t.Fatalf("Compile not deterministic: %+v vs %+v", a, b)
	}
}
