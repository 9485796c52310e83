package models

import (
	"testing"
	"time"
)

func TestStatusFromString(t *testing.T) {
	cases := []struct {
		in   string
		want RecordStatus
	}{
		{"SUCCESS", StatusSuccess},
		{"SHAKY", StatusShaky},
		{"FAIL", StatusFail},
		{"", StatusSuccess},
		{"garbage", StatusSuccess},
	}
	for _, c := range cases {
		if got := StatusFromString(c.in); got != c.want {
			t.Errorf("StatusFromString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHasRecordedToday(t *testing.T) {
	today := time.Date(2026, 8, 6, 15, 0, 0, 0, time.Local)

	var state DayState
	if state.HasRecordedToday(today) {
		t.Error("empty state reports a record for today")
	}

	recorded := time.Date(2026, 8, 6, 0, 0, 0, 0, time.Local)
	state.LastRecordDate = &recorded
	if !state.HasRecordedToday(today) {
		t.Error("record at midnight not recognized as today")
	}

	yesterday := recorded.AddDate(0, 0, -1)
	state.LastRecordDate = &yesterday
	if state.HasRecordedToday(today) {
		t.Error("yesterday's record reported as today")
	}
}

func TestLastShaky(t *testing.T) {
	var state DayState
	if _, ok := state.LastShaky(); ok {
		t.Error("LastShaky() ok on empty state")
	}

	first := time.Date(2026, 8, 6, 10, 0, 0, 0, time.Local)
	second := first.Add(2 * time.Hour)
	state.ShakyTimestamps = []time.Time{first, second}

	got, ok := state.LastShaky()
	if !ok || !got.Equal(second) {
		t.Errorf("LastShaky() = %v, %v, want %v, true", got, ok, second)
	}
}
