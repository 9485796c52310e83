package cli

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Minute, "0s"},
		{30 * time.Second, "30s"},
		{45 * time.Minute, "45m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{3 * time.Hour, "3h 0m"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(1); got != "1 day" {
		t.Errorf("FormatDays(1) = %q, want %q", got, "1 day")
	}
	if got := FormatDays(30); got != "30 days" {
		t.Errorf("FormatDays(30) = %q, want %q", got, "30 days")
	}
}

func TestUntilNextMidnight(t *testing.T) {
	now := time.Date(2026, 8, 6, 23, 0, 0, 0, time.Local)
	if got, want := untilNextMidnight(now), time.Hour; got != want {
		t.Errorf("untilNextMidnight(23:00) = %v, want %v", got, want)
	}

	early := time.Date(2026, 8, 6, 0, 0, 1, 0, time.Local)
	got := untilNextMidnight(early)
	if got <= 0 || got > 24*time.Hour {
		t.Errorf("untilNextMidnight just after midnight = %v, want within (0, 24h]", got)
	}
}
